package cmd

import (
	"time"

	"github.com/felixgeelhaar/leasehold/internal/api"
	"github.com/felixgeelhaar/leasehold/internal/errors"
	"github.com/felixgeelhaar/leasehold/internal/session"
	"github.com/felixgeelhaar/leasehold/internal/tokenstore"
	"github.com/felixgeelhaar/leasehold/internal/ux"
)

// statusView is what `auth status` renders. The token value itself is
// never part of it.
type statusView struct {
	Status        string      `json:"status" yaml:"status"`
	Authenticated bool        `json:"authenticated" yaml:"authenticated"`
	User          *api.User   `json:"user,omitempty" yaml:"user,omitempty"`
	Dashboard     string      `json:"dashboard,omitempty" yaml:"dashboard,omitempty"`
	Token         *tokenView  `json:"token,omitempty" yaml:"token,omitempty"`
	Notice        *noticeView `json:"notice,omitempty" yaml:"notice,omitempty"`
	API           string      `json:"api" yaml:"api"`
	TokenFile     string      `json:"tokenFile" yaml:"tokenFile"`
}

// noticeView explains an anonymous status without failing the command.
type noticeView struct {
	Code        string   `json:"code" yaml:"code"`
	Message     string   `json:"message" yaml:"message"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

type tokenView struct {
	Format    string     `json:"format" yaml:"format"`
	Subject   string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
	Expired   bool       `json:"expired" yaml:"expired"`
}

// sessionNotice says why a status is anonymous: no token was stored, or the
// stored one was dropped while revalidating it.
func sessionNotice(st session.State, storedBefore, storedAfter string) *errors.LeaseholdError {
	switch {
	case st.IsAuthenticated:
		return nil
	case storedBefore == "":
		return errors.NewNotLoggedInError()
	case storedAfter == "":
		return errors.NewSessionExpiredError()
	}
	return nil
}

func newStatusView(st session.State, apiURL, tokenFile string, notice *errors.LeaseholdError, now time.Time) statusView {
	v := statusView{
		Status:        st.Status(),
		Authenticated: st.IsAuthenticated,
		User:          st.User,
		API:           apiURL,
		TokenFile:     tokenFile,
	}
	if st.User != nil {
		v.Dashboard = session.DashboardRoute(st.User.Role)
	}
	if st.Token != "" {
		info := tokenstore.Inspect(st.Token)
		tv := &tokenView{Format: info.Format, Subject: info.Subject, Expired: info.Expired(now)}
		if info.HasExpiry() {
			exp := info.ExpiresAt.UTC()
			tv.ExpiresAt = &exp
		}
		v.Token = tv
	}
	if notice != nil {
		v.Notice = &noticeView{Code: string(notice.Code), Message: notice.Message, Suggestions: notice.Suggestions}
	}
	return v
}

func (v statusView) Title() string {
	return "Session"
}

func (v statusView) Fields() []ux.Field {
	statusStyle := "muted"
	if v.Authenticated {
		statusStyle = "success"
	}
	fields := []ux.Field{{Label: "Status", Value: v.Status, Style: statusStyle}}

	if v.User != nil {
		fields = append(fields,
			ux.Field{Label: "User", Value: v.User.FullName()},
			ux.Field{Label: "Email", Value: v.User.Email},
			ux.Field{Label: "Role", Value: string(v.User.Role)},
			ux.Field{Label: "Dashboard", Value: v.Dashboard},
		)
	}

	if v.Token != nil {
		token := v.Token.Format
		style := ""
		if v.Token.ExpiresAt != nil {
			token += ", expires " + v.Token.ExpiresAt.Format(time.RFC3339)
			if v.Token.Expired {
				token += " (expired)"
				style = "warning"
			}
		}
		fields = append(fields, ux.Field{Label: "Token", Value: token, Style: style})
	}

	if v.Notice != nil {
		fields = append(fields, ux.Field{Label: "Notice", Value: "[" + v.Notice.Code + "] " + v.Notice.Message, Style: "warning"})
		for _, hint := range v.Notice.Suggestions {
			fields = append(fields, ux.Field{Label: "Hint", Value: hint, Style: "muted"})
		}
	}

	fields = append(fields,
		ux.Field{Label: "API", Value: v.API, Style: "muted"},
		ux.Field{Label: "Token file", Value: v.TokenFile, Style: "muted"},
	)
	return fields
}

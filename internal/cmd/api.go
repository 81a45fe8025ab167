package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/leasehold/internal/errors"
)

var apiMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func newAPICmd() *cobra.Command {
	var data string

	apiCmd := &cobra.Command{
		Use:   "api <METHOD> <path>",
		Short: "Call an API endpoint with the stored session",
		Long: `Call any marketplace API endpoint through the session client.

The path is relative to the configured base URL. The stored token is sent as
a bearer token when present. The JSON response is printed as received.

Examples:
  leasehold api GET /properties
  leasehold api POST /bookings --data '{"propertyId":"p-1"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			if !apiMethods[method] {
				return errors.New(errors.ErrCodeUsageInvalidArgument, fmt.Sprintf("unsupported method: %s", args[0])).
					WithSuggestion("Use one of: GET, POST, PUT, PATCH, DELETE")
			}

			var body any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errors.New(errors.ErrCodeUsageInvalidArgument, "--data is not valid JSON")
				}
				body = json.RawMessage(data)
			}

			cc, err := commandContextFrom(cmd)
			if err != nil {
				return err
			}

			var out json.RawMessage
			if err := cc.Client.Do(cmd.Context(), method, args[1], body, &out); err != nil {
				return err
			}
			if len(out) == 0 {
				return nil
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, out, "", "  "); err != nil {
				return fmt.Errorf("failed to format response: %w", err)
			}
			pretty.WriteByte('\n')
			_, err = pretty.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	apiCmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	return apiCmd
}

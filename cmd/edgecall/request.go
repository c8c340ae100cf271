// ABOUTME: Commands issuing raw REST calls and action calls through the shared pipeline
// ABOUTME: get, post and call print the decoded result or the normalized error

package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/edgecall/internal/action"
	"github.com/2389/edgecall/internal/apiclient"
	"github.com/2389/edgecall/internal/app"
)

var (
	requestPublic bool
	requestQuery  []string
	callEndpoint  string
)

var getCmd = &cobra.Command{
	Use:   "get <endpoint>",
	Short: "Send a GET to a function path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := requestOptions()
		if err != nil {
			return err
		}
		res, err := apiclient.Get[json.RawMessage](cmd.Context(), app.MustGet().API, args[0], opts...)
		return printResult(res, err)
	},
}

var postCmd = &cobra.Command{
	Use:   "post <endpoint> [json|-]",
	Short: "Send a POST with a JSON body to a function path",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := requestOptions()
		if err != nil {
			return err
		}
		var body any
		if len(args) == 2 {
			if body, err = parsePayload(args[1]); err != nil {
				return err
			}
		}
		res, err := apiclient.Post[json.RawMessage](cmd.Context(), app.MustGet().API, args[0], body, opts...)
		return printResult(res, err)
	},
}

var callCmd = &cobra.Command{
	Use:   "call <action> [json|-]",
	Short: "Invoke a named action on the action endpoint",
	Long: "Invoke a named action. Known actions:\n  " + strings.Join(actionNames(), "\n  ") +
		"\n\nUnknown names are rejected locally without a network call.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := requestOptions()
		if err != nil {
			return err
		}
		var payload any
		if len(args) == 2 {
			if payload, err = parsePayload(args[1]); err != nil {
				return err
			}
		}

		a := app.MustGet()
		name := action.Name(args[0])
		if callEndpoint != "" {
			d := action.NewDispatcher(a.API, callEndpoint, nil)
			res, err := action.Call[json.RawMessage](cmd.Context(), d, name, payload, opts...)
			return printResult(res, err)
		}
		res, err := a.Dialectic.Call(cmd.Context(), name, payload, opts...)
		return printResult(res, err)
	},
}

func init() {
	for _, c := range []*cobra.Command{getCmd, postCmd, callCmd} {
		c.Flags().BoolVar(&requestPublic, "public", false, "send without the session credential")
		c.Flags().StringArrayVarP(&requestQuery, "query", "q", nil, "query parameter key=value (repeatable)")
	}
	callCmd.Flags().StringVar(&callEndpoint, "endpoint", "", "action endpoint (default: dialectic-service)")
}

func requestOptions() ([]apiclient.Option, error) {
	var opts []apiclient.Option
	if requestPublic {
		opts = append(opts, apiclient.Public())
	}
	if len(requestQuery) > 0 {
		q := url.Values{}
		for _, kv := range requestQuery {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return nil, fmt.Errorf("invalid query parameter %q, want key=value", kv)
			}
			q.Add(k, v)
		}
		opts = append(opts, apiclient.WithQuery(q))
	}
	return opts, nil
}

func actionNames() []string {
	names := action.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.String())
	}
	return out
}

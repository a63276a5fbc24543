package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/memquery"
	"github.com/hupe1980/memquery/core"
)

func (a *app) newAskCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [logical-form]",
		Short: "Resolve a GET_MEMORY logical form",
		Long: `Resolve a GET_MEMORY logical form given as JSON, e.g.

  memquery ask --snapshot world.yaml '{"filters": {"type": "AGENT"}, "answer_type": "EXISTS"}'

The logical form is read from stdin when omitted or "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := readForm(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			logger, err := a.cfg.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			logger = logger.WithQuery(compactForm(form))

			defer logger.StartTimer("ask")()

			view, closeStore, err := openStore(cmd.Context(), a.cfg, logger.WithComponent("store"))
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			mq := memquery.New(func(o *memquery.Options) {
				o.Memory = view
				o.StrictShapes = a.cfg.Strict
				o.Logger = logger.WithComponent("resolver")
			})

			resp, err := mq.AskJSON(cmd.Context(), form)
			if err != nil {
				return err
			}

			return writeResponse(cmd.OutOrStdout(), resp, asJSON)
		},
	}

	cmd.Flags().String("snapshot", "", "YAML snapshot loaded into the store before resolving")
	cmd.Flags().Bool("strict", false, "propagate shape faults instead of answering \"I don't understand\"")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response as JSON")

	_ = a.v.BindPFlag(keyStoreSnapshot, cmd.Flags().Lookup("snapshot"))
	_ = a.v.BindPFlag(keyStrict, cmd.Flags().Lookup("strict"))

	return cmd
}

// writeResponse prints the answer text, or the whole response as JSON.
func writeResponse(w io.Writer, resp core.Response, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(resp)
	}

	_, err := fmt.Fprintln(w, resp.Text)

	return err
}

// compactForm renders the logical form on one line for log records.
func compactForm(form []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, form); err != nil {
		return strings.Join(strings.Fields(string(form)), " ")
	}

	return buf.String()
}

func readForm(in io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read logical form: %w", err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("empty logical form")
	}

	return data, nil
}

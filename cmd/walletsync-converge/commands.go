package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"walletsync/internal/core/version"
	dom "walletsync/internal/services/convergence/domain"

	"github.com/spf13/cobra"
)

// errExhausted marks a convergence that spent its budget, the process exits 2
var errExhausted = errors.New("attempt budget exhausted")

// opener builds the convergence port, release frees what it opened
type opener func(ctx context.Context) (svc dom.ConvergencePort, release func(), err error)

type outcome struct {
	Kind    dom.Kind `json:"kind"`
	Subject string   `json:"subject"`
	State   string   `json:"state"`
	Detail  any      `json:"detail,omitempty"`
	dom.Meta
}

func newRoot(open opener) *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:           "walletsync-converge",
		Short:         "Poll a wallet resource until its status settles",
		Version:       version.Info("walletsync-converge").String(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")

	sub := func(use, short string, run func(ctx context.Context, svc dom.ConvergencePort, id string) (outcome, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, release, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer release()

				out, err := run(cmd.Context(), svc, args[0])
				if err != nil {
					return err
				}
				if err := render(cmd.OutOrStdout(), out, asJSON); err != nil {
					return err
				}
				if out.Exhausted {
					return errExhausted
				}
				return nil
			},
		}
	}

	root.AddCommand(
		sub("kyc", "Poll KYC verification until it settles", func(ctx context.Context, svc dom.ConvergencePort, id string) (outcome, error) {
			r, err := svc.PollForKycState(ctx, id)
			return outcome{Kind: dom.KindKYC, Subject: id, State: string(r.State), Meta: r.Meta}, err
		}),
		sub("tier", "Classify KYC tiers once without polling", func(ctx context.Context, svc dom.ConvergencePort, id string) (outcome, error) {
			r, err := svc.CheckTierLevel(ctx, id)
			return outcome{Kind: dom.KindTierCheck, Subject: id, State: string(r.State), Meta: r.Meta}, err
		}),
		sub("order", "Poll a buy order until it reaches a final state", func(ctx context.Context, svc dom.ConvergencePort, id string) (outcome, error) {
			r, err := svc.PollOrderStatus(ctx, id)
			return outcome{Kind: dom.KindOrder, Subject: id, State: string(r.Order.State), Detail: r.Order, Meta: r.Meta}, err
		}),
		sub("card", "Poll a card until it is usable or dead", func(ctx context.Context, svc dom.ConvergencePort, id string) (outcome, error) {
			r, err := svc.PollCardStatus(ctx, id)
			return outcome{Kind: dom.KindCard, Subject: id, State: string(r.Card.Status), Detail: r.Card, Meta: r.Meta}, err
		}),
	)
	return root
}

func render(w io.Writer, o outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}

	head := successMsg("%s %s settled", o.Kind, o.Subject)
	if o.Exhausted {
		head = warnMsg("%s %s did not settle", o.Kind, o.Subject)
	}
	pairs := []pair{
		kv("state", stateStyle(o).Render(o.State)),
		kv("attempts", strconv.Itoa(o.Attempts)),
		kv("exhausted", flag(o.Exhausted)),
	}
	if o.LastError != "" {
		pairs = append(pairs, kv("last error", muted(o.LastError)))
	}
	_, err := fmt.Fprintf(w, "%s\n%s", head, keyValues("  ", pairs...))
	return err
}

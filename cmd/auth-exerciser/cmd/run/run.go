package run

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/common"
	"opencsg.com/auth-exerciser/common/types"
)

var (
	scenario string
	unique   bool
	summary  bool
)

func init() {
	Cmd.Flags().StringVarP(&scenario, "scenario", "s", string(types.ScenarioRegisterDelete),
		"scenario to run: register-delete, register-rename, login-delete or login-rename")
	Cmd.Flags().BoolVar(&unique, "unique", false, "append a random suffix to the configured username and email")
	Cmd.Flags().BoolVar(&summary, "summary", false, "print a json summary of the steps at the end")
}

var Cmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "run a scripted scenario, printing every response",
	Example: `  auth-exerciser run
  auth-exerciser run register-rename --code-provider redis`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		if unique {
			cfg.Account.UniqueSuffix = true
		}
		name := scenario
		if len(args) == 1 {
			name = args[0]
		}

		ec, release, err := common.NewExerciser(cmd, cfg)
		if err != nil {
			return err
		}
		defer release()

		result, err := ec.Run(cmd.Context(), types.Scenario(name))
		if summary && result != nil {
			data, merr := json.MarshalIndent(result, "", "  ")
			if merr != nil {
				return fmt.Errorf("failed to encode run summary, %w", merr)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}
		return err
	},
}

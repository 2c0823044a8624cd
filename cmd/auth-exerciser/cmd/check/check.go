package check

import (
	"github.com/spf13/cobra"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/common"
	"opencsg.com/auth-exerciser/common/errorx"
)

var (
	format string
	unique bool
)

func init() {
	Cmd.Flags().StringVar(&format, "format", "", "report format, text or json. defaults to output.format of the config")
	Cmd.Flags().BoolVar(&unique, "unique", true, "append a random suffix to the configured username and email")
}

var Cmd = &cobra.Command{
	Use:   "check",
	Short: "verify the backend's contract with a fresh account and print a pass/fail report",
	Long: `check registers a fresh account and verifies, in order: send-code answers 200 without an error field,
a wrong code is rejected without creating the account, register and login hand out a session id,
a renamed account can log in under its new name and a deleted account can no longer log in.
The command exits non-zero unless every check passed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := common.LoadConfig()
		if err != nil {
			return err
		}
		if format != "" {
			cfg.Output.Format = format
		}
		cfg.Account.UniqueSuffix = unique
		if err := cfg.Validate(); err != nil {
			return err
		}

		ec, release, err := common.NewExerciser(cmd, cfg)
		if err != nil {
			return err
		}
		defer release()

		report, err := ec.Check(cmd.Context())
		if err != nil {
			return err
		}
		if !report.Passed() {
			return errorx.ErrCheckFailed
		}
		return nil
	},
}

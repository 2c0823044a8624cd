package call

import (
	"github.com/spf13/cobra"
	"opencsg.com/auth-exerciser/cmd/auth-exerciser/cmd/common"
	"opencsg.com/auth-exerciser/common/types"
)

var Cmd = &cobra.Command{
	Use:   "call",
	Short: "send a single request to one endpoint and print the response",
}

type argFlag int

const (
	flagSession argFlag = iota
	flagEmail
	flagUsername
	flagPassword
	flagCode
	flagToken
	flagNewUsername
	flagNewEmail
	flagNewPassword
)

// every endpoint that needs a session logs in with the account flags when --session is not set
var loginFlags = []argFlag{flagSession, flagUsername, flagPassword}

func init() {
	Cmd.AddCommand(
		newEndpointCmd(types.EndpointSendEmailCode, "request an email verification code", flagEmail),
		newEndpointCmd(types.EndpointRegister, "register an account, asking the code provider when --code is not set",
			flagEmail, flagUsername, flagPassword, flagCode),
		newEndpointCmd(types.EndpointLogin, "log in and print the session id", flagUsername, flagPassword),
		newEndpointCmd(types.EndpointChangeUsername, "change the username of the session's account",
			append(loginFlags, flagNewUsername)...),
		newEndpointCmd(types.EndpointChangeEmail, "change the email of the session's account",
			append(loginFlags, flagNewEmail)...),
		newEndpointCmd(types.EndpointDeleteAccount, "delete the session's account", loginFlags...),
		newEndpointCmd(types.EndpointUserInfo, "show the username of the session's account", loginFlags...),
		newEndpointCmd(types.EndpointVerifyEmailCode, "exchange an emailed code for a password reset token",
			flagEmail, flagCode),
		newEndpointCmd(types.EndpointResetPassword, "reset the password, verifying the emailed code first when --token is not set",
			flagEmail, flagCode, flagToken, flagNewPassword),
	)
}

func newEndpointCmd(endpoint types.Endpoint, short string, flags ...argFlag) *cobra.Command {
	req := &types.CallReq{Endpoint: endpoint}
	cmd := &cobra.Command{
		Use:   endpoint.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := common.LoadConfig()
			if err != nil {
				return err
			}
			ec, release, err := common.NewExerciser(cmd, cfg)
			if err != nil {
				return err
			}
			defer release()
			return ec.Call(cmd.Context(), req)
		},
	}
	for _, f := range flags {
		switch f {
		case flagSession:
			cmd.Flags().StringVar(&req.SessionID, "session", "", "session id, logs in with the account when empty")
		case flagEmail:
			cmd.Flags().StringVar(&req.Email, "email", "", "email, defaults to account.email")
		case flagUsername:
			cmd.Flags().StringVar(&req.Username, "username", "", "username, defaults to account.username")
		case flagPassword:
			cmd.Flags().StringVar(&req.Password, "password", "", "password, defaults to account.password")
		case flagCode:
			cmd.Flags().StringVar(&req.Code, "code", "", "verification code, asks the code provider when empty")
		case flagToken:
			cmd.Flags().StringVar(&req.Token, "token", "", "password reset token")
		case flagNewUsername:
			cmd.Flags().StringVar(&req.NewUsername, "new-username", "", "new username, defaults to account.new_username")
		case flagNewEmail:
			cmd.Flags().StringVar(&req.NewEmail, "new-email", "", "new email, defaults to account.new_email")
		case flagNewPassword:
			cmd.Flags().StringVar(&req.NewPassword, "new-password", "", "new password, defaults to account.new_password")
		}
	}
	return cmd
}

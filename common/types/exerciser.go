package types

import "time"

type Endpoint string

const (
	EndpointSendEmailCode   Endpoint = "send-code"
	EndpointRegister        Endpoint = "register"
	EndpointLogin           Endpoint = "login"
	EndpointChangeUsername  Endpoint = "rename"
	EndpointChangeEmail     Endpoint = "change-email"
	EndpointDeleteAccount   Endpoint = "delete"
	EndpointUserInfo        Endpoint = "whoami"
	EndpointVerifyEmailCode Endpoint = "verify-code"
	EndpointResetPassword   Endpoint = "reset-password"
)

func (e Endpoint) String() string {
	return string(e)
}

// CallReq carries the arguments of a single endpoint call. Unset fields fall back to the configured account.
type CallReq struct {
	Endpoint    Endpoint
	SessionID   string
	Email       string
	Username    string
	Password    string
	Code        string
	Token       string
	NewUsername string
	NewEmail    string
	NewPassword string
}

type Scenario string

const (
	ScenarioRegisterDelete Scenario = "register-delete"
	ScenarioRegisterRename Scenario = "register-rename"
	ScenarioLoginDelete    Scenario = "login-delete"
	ScenarioLoginRename    Scenario = "login-rename"
)

type StepResult struct {
	Name       string        `json:"name"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	ErrorCode  string        `json:"error_code,omitempty"`
}

type RunResult struct {
	RunID    string       `json:"run_id"`
	Scenario Scenario     `json:"scenario"`
	Email    string       `json:"email"`
	Username string       `json:"username"`
	Steps    []StepResult `json:"steps"`
}

type CheckStatus string

const (
	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

type CheckResult struct {
	Name     string        `json:"name"`
	Status   CheckStatus   `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

type CheckReport struct {
	RunID    string        `json:"run_id"`
	BaseURL  string        `json:"base_url"`
	Email    string        `json:"email"`
	Username string        `json:"username"`
	Checks   []CheckResult `json:"checks"`
}

func (r *CheckReport) Passed() bool {
	for _, c := range r.Checks {
		if c.Status != CheckPassed {
			return false
		}
	}
	return true
}

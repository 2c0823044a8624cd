package tests

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FakeAuthServer is an in-memory stand-in for the authentication backend, used in tests only.
// It answers like the real backend: {"msg": ...} bodies, {"msg", "session_id"} on register and login,
// and a raw session id in the Authorization header on /api routes. /api/checkcode, /api/reset/password
// and /api/user/info answer HTTP 200 with a {"code", "msg", "data"} envelope, failures included.
type FakeAuthServer struct {
	*httptest.Server

	mu           sync.Mutex
	codes        map[string]string    // email -> verification code
	users        map[string]*fakeUser // username -> user
	sessions     map[string]*fakeUser // session id -> user
	resetTokens  map[string]string    // reset token -> email
	requests     []RecordedRequest
	acceptCookie bool
	acceptHeader bool
	cookieName   string
}

type fakeUser struct {
	Email    string
	Username string
	Password string
}

type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Cookie        string
	Body          []byte
}

type FakeOption func(s *FakeAuthServer)

// WithCookieAuth makes /api routes accept the session id from the session cookie only.
func WithCookieAuth(cookieName string) FakeOption {
	return func(s *FakeAuthServer) {
		s.acceptCookie = true
		s.acceptHeader = false
		s.cookieName = cookieName
	}
}

func NewFakeAuthServer(opts ...FakeOption) *FakeAuthServer {
	s := &FakeAuthServer{
		codes:        map[string]string{},
		users:        map[string]*fakeUser{},
		sessions:     map[string]*fakeUser{},
		resetTokens:  map[string]string{},
		acceptHeader: true,
		cookieName:   "session_id",
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.record)
	r.POST("/send/email", s.sendEmail)
	r.POST("/register", s.register)
	r.POST("/login", s.login)
	r.POST("/api/checkcode", s.checkCode)
	r.POST("/api/reset/password", s.resetPassword)
	api := r.Group("/api", s.authSession)
	api.POST("/change/username", s.changeUsername)
	api.POST("/change/email", s.changeEmail)
	api.POST("/delete/account", s.deleteAccount)
	api.GET("/user/info", s.userInfo)

	s.Server = httptest.NewServer(r)
	return s
}

// Code returns the verification code last sent to email.
func (s *FakeAuthServer) Code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

func (s *FakeAuthServer) HasUser(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[username]
	return ok
}

// AddUser creates an account directly, bypassing email verification.
func (s *FakeAuthServer) AddUser(email, username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &fakeUser{Email: email, Username: username, Password: password}
}

func (s *FakeAuthServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *FakeAuthServer) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	rr := RecordedRequest{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		Body:          body,
	}
	if cookie, err := c.Request.Cookie(s.cookieName); err == nil {
		rr.Cookie = cookie.Value
	}
	s.mu.Lock()
	s.requests = append(s.requests, rr)
	s.mu.Unlock()
	c.Next()
}

func (s *FakeAuthServer) sendEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid parameters", "error": err.Error()})
		return
	}
	if !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid email"})
		return
	}
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	s.mu.Lock()
	s.codes[req.Email] = strings.ToUpper(hex.EncodeToString(b))
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"msg": "verification code sent"})
}

// validCode must be called with s.mu held.
func (s *FakeAuthServer) validCode(c *gin.Context, email, code string) bool {
	want, ok := s.codes[email]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"msg": "no verification code for this email"})
		return false
	}
	if !strings.EqualFold(want, code) {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "wrong verification code"})
		return false
	}
	return true
}

func (s *FakeAuthServer) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid parameters"})
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "username must be 3 to 20 characters"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.validCode(c, req.Email, req.Code) {
		return
	}
	for _, u := range s.users {
		if u.Email == req.Email {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "email already exists"})
			return
		}
	}
	if _, ok := s.users[req.Username]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "username already exists"})
		return
	}
	u := &fakeUser{Email: req.Email, Username: req.Username, Password: req.Password}
	s.users[u.Username] = u
	c.JSON(http.StatusOK, gin.H{"msg": "registered", "session_id": s.newSession(u)})
}

func (s *FakeAuthServer) login(c *gin.Context) {
	var req struct {
		Account  string `json:"account"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid parameters"})
		return
	}
	name := req.Account
	if name == "" {
		name = req.Username
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var user *fakeUser
	if strings.Contains(name, "@") {
		for _, u := range s.users {
			if u.Email == name {
				user = u
			}
		}
	} else {
		user = s.users[name]
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "user does not exist"})
		return
	}
	if user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "wrong password"})
		return
	}
	for id, u := range s.sessions {
		if u == user {
			delete(s.sessions, id)
		}
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logged in", "session_id": s.newSession(user)})
}

// newSession must be called with s.mu held.
func (s *FakeAuthServer) newSession(u *fakeUser) string {
	id := uuid.New().String()
	s.sessions[id] = u
	return id
}

func (s *FakeAuthServer) authSession(c *gin.Context) {
	var sessionID string
	if s.acceptHeader {
		sessionID = c.GetHeader("Authorization")
	}
	if sessionID == "" && s.acceptCookie {
		if cookie, err := c.Request.Cookie(s.cookieName); err == nil {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	s.mu.Lock()
	user, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session or session expired"})
		return
	}
	c.Set("user", user)
	c.Next()
}

func (s *FakeAuthServer) changeUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid parameters"})
		return
	}
	user := c.MustGet("user").(*fakeUser)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.Username]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "username already exists"})
		return
	}
	delete(s.users, user.Username)
	user.Username = req.Username
	s.users[user.Username] = user
	c.JSON(http.StatusOK, gin.H{"msg": "username changed"})
}

func (s *FakeAuthServer) changeEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid parameters"})
		return
	}
	user := c.MustGet("user").(*fakeUser)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "email already exists"})
			return
		}
	}
	user.Email = req.Email
	c.JSON(http.StatusOK, gin.H{"msg": "email changed"})
}

func (s *FakeAuthServer) deleteAccount(c *gin.Context) {
	user := c.MustGet("user").(*fakeUser)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, user.Username)
	for id, u := range s.sessions {
		if u == user {
			delete(s.sessions, id)
		}
	}
	c.JSON(http.StatusOK, gin.H{"msg": "account deleted"})
}

func envelope(c *gin.Context, code int, msg string, data any) {
	c.JSON(http.StatusOK, gin.H{"code": code, "msg": msg, "data": data})
}

func (s *FakeAuthServer) userInfo(c *gin.Context) {
	user := c.MustGet("user").(*fakeUser)
	s.mu.Lock()
	defer s.mu.Unlock()
	envelope(c, http.StatusOK, "success", gin.H{"username": user.Username})
}

func (s *FakeAuthServer) checkCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		envelope(c, http.StatusBadRequest, "invalid parameters", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if want, ok := s.codes[req.Email]; !ok || !strings.EqualFold(want, req.Code) {
		envelope(c, http.StatusBadRequest, "invalid or expired verification code", nil)
		return
	}
	token := uuid.New().String()
	s.resetTokens[token] = req.Email
	envelope(c, http.StatusOK, "success", token)
}

func (s *FakeAuthServer) resetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		envelope(c, http.StatusBadRequest, "invalid parameters", nil)
		return
	}
	if len(req.NewPassword) < 6 {
		envelope(c, http.StatusBadRequest, "password must be at least 6 characters", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resetTokens[req.Token]
	if !ok {
		envelope(c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}
	delete(s.resetTokens, req.Token)
	var user *fakeUser
	for _, u := range s.users {
		if u.Email == email {
			user = u
		}
	}
	if user == nil {
		envelope(c, http.StatusNotFound, "user not found", nil)
		return
	}
	user.Password = req.NewPassword
	envelope(c, http.StatusOK, "success", "password reset successfully")
}

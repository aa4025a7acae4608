package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lingualearn/auth-service/internal/domain"
	"github.com/lingualearn/auth-service/internal/dto"
	"github.com/lingualearn/auth-service/internal/repository"
	"github.com/lingualearn/auth-service/internal/utils"
)

func (s *Suite) postJSON(path string, body interface{}) *http.Response {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	resp, err := http.Post(s.BaseURL+path, "application/json", bytes.NewBuffer(data))
	s.Require().NoError(err)
	return resp
}

func (s *Suite) registerRequest(email, username string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     email,
		Username:  username,
		Password:  "Password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func (s *Suite) register(email, username string) dto.AuthResponse {
	resp := s.postJSON("/api/v1/auth/register", s.registerRequest(email, username))
	defer resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	return authResp
}

func (s *Suite) login(email, password string) (*http.Response, dto.AuthResponse) {
	resp := s.postJSON("/api/v1/auth/login", dto.LoginRequest{Email: email, Password: password})

	var authResp dto.AuthResponse
	if resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	}
	resp.Body.Close()
	return resp, authResp
}

func (s *Suite) seedTeacher(email, username, password string) {
	hash, err := utils.HashPassword(password, 4)
	s.Require().NoError(err)

	repos := repository.NewRepositories(s.Postgres)
	err = repos.Teacher.Create(context.Background(), &domain.Teacher{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    "Grace",
		LastName:     "Hopper",
	})
	s.Require().NoError(err)
}

func (s *Suite) authorizedRequest(method, path, accessToken string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.BaseURL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestRegister_Success() {
	authResp := s.register("ada@example.com", "ada_l")

	s.NotEmpty(authResp.AccessToken)
	s.NotEmpty(authResp.RefreshToken)
	s.NotEqual(authResp.AccessToken, authResp.RefreshToken)
	s.Equal("ada@example.com", authResp.User.Email)
	s.Equal(domain.RoleStudent, authResp.User.Role)
	s.NotEmpty(authResp.User.ID)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("dup@example.com", "dup_one")

	resp := s.postJSON("/api/v1/auth/register", s.registerRequest("dup@example.com", "dup_two"))
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.Equal("Conflict", errResp.Error)
}

func (s *Suite) TestRegister_TeacherEmailConflict() {
	s.seedTeacher("grace@example.com", "grace_h", "Password123")

	resp := s.postJSON("/api/v1/auth/register", s.registerRequest("grace@example.com", "new_student"))
	defer resp.Body.Close()

	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *Suite) TestRegister_InvalidEmail() {
	resp := s.postJSON("/api/v1/auth/register", s.registerRequest("invalid-email", "some_user"))
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestRegister_WeakPassword() {
	req := s.registerRequest("weak@example.com", "weak_user")
	req.Password = "alllowercase"

	resp := s.postJSON("/api/v1/auth/register", req)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_Success() {
	s.register("login@example.com", "login_user")

	resp, authResp := s.login("login@example.com", "Password123")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(authResp.AccessToken)
	s.NotEmpty(authResp.RefreshToken)
	s.Equal("login@example.com", authResp.User.Email)
}

func (s *Suite) TestLogin_Teacher() {
	s.seedTeacher("teach@example.com", "teach_user", "Password123")

	resp, authResp := s.login("teach@example.com", "Password123")

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(domain.RoleTeacher, authResp.User.Role)
}

func (s *Suite) TestLogin_InvalidCredentials() {
	s.register("victim@example.com", "victim_user")

	unknown, _ := s.login("nonexistent@example.com", "Password123")
	wrongPass, _ := s.login("victim@example.com", "WrongPassword123")

	s.Equal(http.StatusUnauthorized, unknown.StatusCode)
	s.Equal(http.StatusUnauthorized, wrongPass.StatusCode)
}

func (s *Suite) TestLogin_LockoutAfterRepeatedFailures() {
	s.register("locked@example.com", "locked_user")

	for i := 0; i < 5; i++ {
		resp, _ := s.login("locked@example.com", "WrongPassword123")
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
	}

	// Correct password no longer helps.
	resp, _ := s.login("locked@example.com", "Password123")
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestGetProfile_Student() {
	authResp := s.register("profile@example.com", "profile_user")

	resp := s.authorizedRequest("GET", "/api/v1/auth/profile", authResp.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var profile dto.ProfileResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&profile))
	s.Equal("profile@example.com", profile.Email)
	s.Equal(domain.RoleStudent, profile.Role)
	s.Require().NotNil(profile.CurrentLevel)
	s.Equal(domain.LevelBeginner, *profile.CurrentLevel)
	s.False(profile.CreatedAt.IsZero())
}

func (s *Suite) TestGetProfile_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/profile", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetProfile_InvalidToken() {
	resp := s.authorizedRequest("GET", "/api/v1/auth/profile", "invalid-token", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_RotatesAndRejectsReuse() {
	authResp := s.register("refresh@example.com", "refresh_user")

	resp := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	s.Equal(http.StatusOK, resp.StatusCode)

	var rotated dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&rotated))
	resp.Body.Close()
	s.NotEmpty(rotated.RefreshToken)
	s.NotEqual(authResp.RefreshToken, rotated.RefreshToken)

	// The spent token must be dead.
	reuse := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	defer reuse.Body.Close()
	s.Equal(http.StatusUnauthorized, reuse.StatusCode)
}

func (s *Suite) TestRefresh_MissingToken() {
	resp := s.postJSON("/api/v1/auth/refresh", map[string]string{})
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogout_RevokesRefreshToken() {
	authResp := s.register("logout@example.com", "logout_user")

	resp := s.authorizedRequest("POST", "/api/v1/auth/logout", authResp.AccessToken,
		dto.LogoutRequest{RefreshToken: authResp.RefreshToken})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&successResp))
	s.Equal("Logged out successfully", successResp.Message)

	refresh := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	defer refresh.Body.Close()
	s.Equal(http.StatusUnauthorized, refresh.StatusCode)
}

func (s *Suite) TestLogoutAll_RevokesEverySession() {
	s.register("everywhere@example.com", "everywhere_user")

	_, session1 := s.login("everywhere@example.com", "Password123")
	_, session2 := s.login("everywhere@example.com", "Password123")

	resp := s.authorizedRequest("POST", "/api/v1/auth/logout-all", session1.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	for _, token := range []string{session1.RefreshToken, session2.RefreshToken} {
		refresh := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: token})
		s.Equal(http.StatusUnauthorized, refresh.StatusCode)
		refresh.Body.Close()
	}
}

func (s *Suite) TestCompleteFlow() {
	authResp := s.register("complete@example.com", "complete_user")

	me := s.authorizedRequest("GET", "/api/v1/auth/profile", authResp.AccessToken, nil)
	s.Equal(http.StatusOK, me.StatusCode)
	me.Body.Close()

	refresh := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: authResp.RefreshToken})
	s.Require().Equal(http.StatusOK, refresh.StatusCode)
	var rotated dto.AuthResponse
	s.Require().NoError(json.NewDecoder(refresh.Body).Decode(&rotated))
	refresh.Body.Close()

	logout := s.authorizedRequest("POST", "/api/v1/auth/logout", rotated.AccessToken,
		dto.LogoutRequest{RefreshToken: rotated.RefreshToken})
	s.Equal(http.StatusOK, logout.StatusCode)
	logout.Body.Close()

	// The access token outlives the session until it expires.
	meAgain := s.authorizedRequest("GET", "/api/v1/auth/profile", rotated.AccessToken, nil)
	s.Equal(http.StatusOK, meAgain.StatusCode)
	meAgain.Body.Close()

	// The revoked refresh token does not.
	dead := s.postJSON("/api/v1/auth/refresh", dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	s.Equal(http.StatusUnauthorized, dead.StatusCode)
	dead.Body.Close()
}

package handler_test

import (
	"net/http"
	"net/url"
	"testing"
)

func TestLogin_SetsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t, nil)
	c := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp := env.postForm(t, c, "/login", url.Values{"password": {testPassword}}, false)

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", loc)
	}
	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == "auth_token" {
			token = ck.Value
			if !ck.HttpOnly {
				t.Error("auth cookie must be HttpOnly")
			}
		}
	}
	if err := env.auth.ValidateToken(token); err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.postForm(t, http.DefaultClient, "/login", url.Values{"password": {"nope nope nope"}}, false)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == "auth_token" {
			t.Fatal("no auth cookie expected after a failed login")
		}
	}
}

func TestLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, nil)

	// The test limiter allows three attempts and never refills.
	for i := 0; i < 3; i++ {
		resp := env.postForm(t, http.DefaultClient, "/login", url.Values{"password": {"wrong password"}}, false)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}

	resp := env.postForm(t, http.DefaultClient, "/login", url.Values{"password": {testPassword}}, false)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header")
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.client(t)

	resp := env.postForm(t, c, "/logout", nil, false)

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == "auth_token" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected the auth cookie to be cleared")
	}
}

func TestLoginPage_SignedInRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.get(t, env.client(t), "/login", nil)

	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
}

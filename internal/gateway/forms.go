package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

type wireUserInfo struct {
	Token string `json:"token"`
	User  struct {
		Name   string     `json:"name"`
		Email  string     `json:"email"`
		UserID flexString `json:"userId"`
	} `json:"user"`
}

// Login signs in over the public client. Only an explicit success carrying a
// token counts as signed in.
func (g *Gateway) Login(ctx context.Context, form domain.LoginForm) Result[domain.LoginResult] {
	const endpoint = "login"
	env, err := g.Public.postJSON(ctx, endpoint, "/login.php", form)
	if err != nil {
		return Fail[domain.LoginResult](err)
	}
	var info wireUserInfo
	if len(env.UserInfo) > 0 {
		if err := json.Unmarshal(env.UserInfo, &info); err != nil {
			return Fail[domain.LoginResult](&TransportError{Endpoint: endpoint, Err: err})
		}
	}
	if env.Success == nil || !*env.Success {
		return Fail[domain.LoginResult](env.appError(endpoint, http.StatusOK))
	}
	if info.Token == "" {
		// The backend's text here is a greeting, not a reason.
		return Fail[domain.LoginResult](&AppError{Endpoint: endpoint, Status: http.StatusOK, Message: "Login failed"})
	}
	return OK(domain.LoginResult{
		Message: env.text(),
		Identity: domain.Identity{
			Token:  info.Token,
			Name:   info.User.Name,
			Email:  info.User.Email,
			UserID: string(info.User.UserID),
		},
	})
}

func (g *Gateway) Register(ctx context.Context, form domain.RegistrationForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Public, "registration", "/registration.php", form)
}

func (g *Gateway) ForgotPassword(ctx context.Context, form domain.ForgotPasswordForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Public, "forgot_password", "/forgot_password.php", form)
}

// ChangePassword completes a reset. The confirmation field stays local.
func (g *Gateway) ChangePassword(ctx context.Context, form domain.ChangePasswordForm) Result[domain.SubmitResult] {
	body := map[string]string{"token": form.Token, "password": form.Password}
	return submit(ctx, g.Public, "change_password", "/completeChangePassword.php", body)
}

func (g *Gateway) Contact(ctx context.Context, form domain.ContactForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Authenticated, "contact", "/contact.php", form)
}

func (g *Gateway) Newsletter(ctx context.Context, form domain.NewsletterForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Authenticated, "newsletter", "/newsletter.php", form)
}

func (g *Gateway) PrayerRequest(ctx context.Context, form domain.PrayerRequestForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Authenticated, "prayer_request", "/prayer_request.php", form)
}

// Testimony is the one form the backend takes as multipart.
func (g *Gateway) Testimony(ctx context.Context, form domain.TestimonyForm) Result[domain.SubmitResult] {
	const endpoint = "testimony"
	env, err := g.Authenticated.postMultipart(ctx, endpoint, "/testimony.php", form.Fields())
	if err != nil {
		return Fail[domain.SubmitResult](err)
	}
	return OK(submitResult(env))
}

func (g *Gateway) Evangelism(ctx context.Context, form domain.EvangelismForm) Result[domain.SubmitResult] {
	if form.SoulsDetails == nil {
		form.SoulsDetails = []domain.SoulDetails{}
	}
	return submit(ctx, g.Authenticated, "evangelism", "/evangelism.php", form)
}

func (g *Gateway) Salvation(ctx context.Context, form domain.SalvationForm) Result[domain.SubmitResult] {
	return submit(ctx, g.Authenticated, "salvation", "/salvation.php", form)
}

func submit(ctx context.Context, c *Client, endpoint, path string, body any) Result[domain.SubmitResult] {
	env, err := c.postJSON(ctx, endpoint, path, body)
	if err != nil {
		return Fail[domain.SubmitResult](err)
	}
	return OK(submitResult(env))
}

func submitResult(env envelope) domain.SubmitResult {
	return domain.SubmitResult{Message: env.text(), SubMessage: env.SubMessage}
}

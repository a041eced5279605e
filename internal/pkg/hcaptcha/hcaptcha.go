package hcaptcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emperror.dev/errors"

	"github.com/ManuelReschke/ServerHub/internal/pkg/env"
)

const DefaultVerifyURL = "https://hcaptcha.com/siteverify"

// FormField is the form field the hCaptcha widget posts its token in.
const FormField = "h-captcha-response"

var ErrVerificationFailed = errors.New("hCaptcha validation failed")

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks hCaptcha tokens. A verifier without secret is disabled and
// accepts every request.
type Verifier struct {
	Secret    string
	SiteKey   string
	VerifyURL string
	Client    *http.Client
}

func NewVerifierFromEnv() *Verifier {
	return &Verifier{
		Secret:    env.GetEnv("HCAPTCHA_SECRET", ""),
		SiteKey:   env.GetEnv("HCAPTCHA_SITEKEY", ""),
		VerifyURL: DefaultVerifyURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Enabled() bool {
	return v != nil && v.Secret != ""
}

func (v *Verifier) Verify(ctx context.Context, token string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return errors.Wrap(ErrVerificationFailed, "token is empty")
	}

	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build hCaptcha request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request to hCaptcha API")
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return errors.Wrap(err, "decode hCaptcha API response")
	}

	if !response.Success {
		return errors.WithDetails(ErrVerificationFailed, "error_codes", strings.Join(response.ErrorCodes, ", "))
	}
	return nil
}

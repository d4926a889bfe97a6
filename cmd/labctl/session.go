package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"lab-backend/pkg/labclient"
)

func (a *app) readToken() (string, error) {
	data, err := os.ReadFile(a.tokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ler token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *app) saveToken(token string) error {
	if err := os.WriteFile(a.tokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("gravar token: %w", err)
	}
	return nil
}

// client returns a gateway client carrying the saved token, if any.
func (a *app) client() (*labclient.Client, error) {
	token, err := a.readToken()
	if err != nil {
		return nil, err
	}
	return labclient.New(a.baseURL, labclient.WithToken(token), labclient.WithTimeout(a.timeout))
}

// explain turns gateway errors into something readable on a terminal.
func explain(err error) error {
	var apiErr *labclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
		return fmt.Errorf("%s (execute 'labctl login')", apiErr.Message)
	}
	var tErr *labclient.TransportError
	if errors.As(err, &tErr) {
		return fmt.Errorf("servidor indisponível: %w", tErr.Err)
	}
	return err
}

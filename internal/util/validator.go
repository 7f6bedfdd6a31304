package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateTituloEleitor exige exatamente 12 dígitos numéricos.
func ValidateTituloEleitor(titulo string) error {
	titulo = strings.TrimSpace(titulo)
	if titulo == "" {
		return errors.New("título de eleitor obrigatório")
	}
	if len(titulo) != 12 {
		return errors.New("título de eleitor deve ter exatamente 12 dígitos")
	}
	for _, r := range titulo {
		if r < '0' || r > '9' {
			return errors.New("título de eleitor deve ter exatamente 12 dígitos")
		}
	}
	return nil
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

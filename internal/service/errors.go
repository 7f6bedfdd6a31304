package service

import "errors"

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrRefreshAusente indica requisição de refresh sem token.
	ErrRefreshAusente = errors.New("refresh token ausente")
	// ErrRefreshInvalido indica refresh com assinatura inválida ou expirado.
	ErrRefreshInvalido = errors.New("refresh token inválido")
	// ErrRefreshRevogado indica refresh bem-formado porém substituído por
	// rotação posterior (não confere com o hash armazenado).
	ErrRefreshRevogado = errors.New("refresh token revogado")
	// ErrCandidatoNaoEncontrado indica candidato inexistente.
	ErrCandidatoNaoEncontrado = errors.New("candidato não encontrado")
	// ErrEleitorNaoEncontrado indica eleitor inexistente.
	ErrEleitorNaoEncontrado = errors.New("eleitor não encontrado")
	// ErrAdminNaoVota barra voto de administrador.
	ErrAdminNaoVota = errors.New("administrador não pode votar")
)

// ValidationError descreve entrada rejeitada na borda da API, independente
// das constraints do banco.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrTituloDuplicado indica título de eleitor já cadastrado.
	ErrTituloDuplicado = errors.New("título de eleitor já cadastrado")
	// ErrAdminJaExiste indica que a base já possui um administrador.
	ErrAdminJaExiste = errors.New("administrador já existe")
	// ErrJaVotou indica que o eleitor já teve o voto registrado.
	ErrJaVotou = errors.New("eleitor já votou")
	// ErrCandidatoComVotos bloqueia a remoção de candidato com votos no livro.
	ErrCandidatoComVotos = errors.New("candidato possui votos registrados")
)

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/votacao/internal/auth"
	"github.com/gestaozabele/votacao/internal/db"
	"github.com/gestaozabele/votacao/internal/repo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	queries := repo.New(pool)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, queries, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	case "list":
		if err := runList(ctx, queries); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar eleitores")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "admin CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  admin create --nome \"Fulano\" --idade 40 --endereco \"Rua X, 1\" --titulo 123456789012 --senha segredo123")
	fmt.Fprintln(os.Stderr, "  admin list")
}

func runCreate(ctx context.Context, queries *repo.Queries, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome     = fs.String("nome", "", "nome completo")
		idade    = fs.Int("idade", 0, "idade")
		email    = fs.String("email", "", "e-mail (opcional)")
		celular  = fs.String("celular", "", "celular (opcional)")
		endereco = fs.String("endereco", "", "endereço")
		titulo   = fs.String("titulo", "", "título de eleitor (12 dígitos)")
		senha    = fs.String("senha", "", "senha em claro")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *nome == "" || *idade <= 0 || *endereco == "" || *titulo == "" || *senha == "" {
		return errors.New("nome, idade, endereco, titulo e senha são obrigatórios")
	}

	senhaHash, err := auth.Hash(*senha)
	if err != nil {
		return fmt.Errorf("hash da senha: %w", err)
	}

	params := repo.InsertEleitorParams{
		Nome:          *nome,
		Idade:         *idade,
		Endereco:      *endereco,
		TituloEleitor: *titulo,
		SenhaHash:     senhaHash,
		Papel:         repo.PapelAdmin,
	}
	if *email != "" {
		params.Email = email
	}
	if *celular != "" {
		params.Celular = celular
	}

	admin, err := queries.InsertEleitor(ctx, params)
	if err != nil {
		if errors.Is(err, repo.ErrAdminJaExiste) {
			return errors.New("já existe um administrador cadastrado")
		}
		return err
	}

	output, _ := json.MarshalIndent(admin.Publico(), "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, queries *repo.Queries) error {
	eleitores, err := queries.ListEleitoresPublicos(ctx)
	if err != nil {
		return err
	}

	if len(eleitores) == 0 {
		fmt.Println("nenhum eleitor cadastrado")
		return nil
	}

	encoded, _ := json.MarshalIndent(eleitores, "", "  ")
	fmt.Println(string(encoded))
	return nil
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	var (
		dir  = flag.String("dir", "migrations", "diretório com os arquivos de migração")
		down = flag.Bool("down", false, "reverte a última migração em vez de aplicar")
	)
	flag.Parse()

	_ = godotenv.Load()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	migrator, err := migrate.New(fmt.Sprintf("file://%s", *dir), dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível iniciar o migrador")
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if *down {
		err = migrator.Steps(-1)
	} else {
		err = migrator.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("nenhuma migração pendente")
			return
		}
		log.Fatal().Err(err).Msg("falha ao migrar")
	}

	log.Info().Msg("migrações aplicadas")
}

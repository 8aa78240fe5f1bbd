package main

import (
	"context"
	crypto_rand "crypto/rand"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/polyfall-game/polyfall/db"
	"github.com/polyfall-game/polyfall/db/bcrypt"
	"github.com/polyfall-game/polyfall/db/firestore"
	"github.com/polyfall-game/polyfall/db/mongo"
	"github.com/polyfall-game/polyfall/db/sql"
	"github.com/polyfall-game/polyfall/db/sql/postgres"
	"github.com/polyfall-game/polyfall/db/user"
	"github.com/polyfall-game/polyfall/game"
	"github.com/polyfall-game/polyfall/game/board"
	"github.com/polyfall-game/polyfall/game/player"
	"github.com/polyfall-game/polyfall/game/pool"
	"github.com/polyfall-game/polyfall/server"
	"github.com/polyfall-game/polyfall/server/auth"
	gameController "github.com/polyfall-game/polyfall/server/game"
	"github.com/polyfall-game/polyfall/server/game/lobby"
	"github.com/polyfall-game/polyfall/server/game/socket"
	"github.com/polyfall-game/polyfall/server/log"
)

const databaseQueryPeriod = 5 * time.Second

// createUserDao creates the user dao, setting up its backend from the data-source URI.
func (m mainFlags) createUserDao(ctx context.Context, log log.Logger, e embedParameters) (*user.Dao, error) {
	backend, err := m.createUserBackend(ctx, log, e)
	if err != nil {
		return nil, err
	}
	ph := bcrypt.NewPasswordHandler()
	return user.NewDao(backend, ph)
}

// createUserBackend creates the user backend for the data-source URI.
// Postgres, MongoDB, and Firestore URIs are supported.
// Users are not stored if the URI is empty.
func (m mainFlags) createUserBackend(ctx context.Context, log log.Logger, e embedParameters) (user.Backend, error) {
	dbCfg := db.Config{
		QueryPeriod: databaseQueryPeriod,
	}
	switch {
	case len(m.databaseURL) == 0:
		log.Printf("no data-source uri, users will not be stored")
		return user.NoDatabaseBackend{}, nil
	case strings.HasPrefix(m.databaseURL, "postgres://"):
		sqlCfg := sql.DatabaseConfig{
			DriverName:  "postgres",
			DatabaseURL: m.databaseURL,
			QueryPeriod: dbCfg.QueryPeriod,
		}
		sqlDB, err := sqlCfg.NewDatabase()
		if err != nil {
			return nil, fmt.Errorf("creating sql database: %w", err)
		}
		files, err := e.sqlFiles()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.Setup(ctx, files); err != nil {
			return nil, fmt.Errorf("setting up sql database: %w", err)
		}
		return &postgres.UserBackend{Database: sqlDB}, nil
	case strings.HasPrefix(m.databaseURL, "mongodb://"), strings.HasPrefix(m.databaseURL, "mongodb+srv://"):
		backend, err := mongo.NewUserBackend(ctx, dbCfg, m.databaseURL)
		if err != nil {
			return nil, fmt.Errorf("creating mongo user backend: %w", err)
		}
		if err := backend.Setup(ctx); err != nil {
			return nil, fmt.Errorf("setting up mongo user backend: %w", err)
		}
		return backend, nil
	case strings.HasPrefix(m.databaseURL, "firestore://"):
		projectID := m.databaseURL[len("firestore://"):]
		backend, err := firestore.NewUserBackend(ctx, dbCfg, projectID)
		if err != nil {
			return nil, fmt.Errorf("creating firestore user backend: %w", err)
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unsupported data-source uri scheme: %v", m.databaseURL)
}

// createServer creates the server, wiring the tokenizer, lobby, and runners together.
func (m mainFlags) createServer(ctx context.Context, log log.Logger, ud *user.Dao, e embedParameters) (*server.Server, error) {
	timeFunc := func() int64 {
		return time.Now().UTC().Unix()
	}
	keyReader := crypto_rand.Reader
	tokenizer, err := tokenizerConfig(keyReader, timeFunc).NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("creating authentication tokenizer: %w", err)
	}
	socketRunner, err := m.socketRunnerConfig(log).NewRunner()
	if err != nil {
		return nil, fmt.Errorf("creating socket runner: %w", err)
	}
	gameRunnerCfg, err := m.gameRunnerConfig(log, timeFunc, e)
	if err != nil {
		return nil, err
	}
	gameRunner, err := gameRunnerCfg.NewRunner(ud)
	if err != nil {
		return nil, fmt.Errorf("creating game runner: %w", err)
	}
	lobbyCfg := lobby.Config{
		Debug: m.debugGame,
		Log:   log,
	}
	l, err := lobbyCfg.NewLobby(socketRunner, gameRunner)
	if err != nil {
		return nil, fmt.Errorf("creating lobby: %w", err)
	}
	tlsCertPEM, tlsKeyPEM, err := m.tlsFiles()
	if err != nil {
		return nil, err
	}
	cfg := server.Config{
		HTTPPort:  m.httpPort,
		HTTPSPort: m.httpsPort,
		StopDur:   5 * time.Second,
		CacheSec:  m.cacheSec,
		Version:   e.version,
		Challenge: server.Challenge{
			Token: m.challengeToken,
			Key:   m.challengeKey,
		},
		TLSCertPEM:    tlsCertPEM,
		TLSKeyPEM:     tlsKeyPEM,
		NoTLSRedirect: m.noTLSRedirect,
	}
	p := server.Parameters{
		Logger:    log,
		Tokenizer: tokenizer,
		UserDao:   ud,
		Lobby:     l,
		StaticFS:  e.staticFS,
	}
	return cfg.NewServer(p)
}

// tlsFiles reads the certificate and key files for TLS, if set.
func (m mainFlags) tlsFiles() (certPEM, keyPEM string, err error) {
	if len(m.tlsCertFile) == 0 && len(m.tlsKeyFile) == 0 {
		return "", "", nil
	}
	cert, err := os.ReadFile(m.tlsCertFile)
	if err != nil {
		return "", "", fmt.Errorf("reading tls certificate file: %w", err)
	}
	key, err := os.ReadFile(m.tlsKeyFile)
	if err != nil {
		return "", "", fmt.Errorf("reading tls key file: %w", err)
	}
	return string(cert), string(key), nil
}

// tokenizerConfig creates the configuration for the authentication token reader/writer.
// The signing key is read from the key reader, so tokens do not survive server restarts.
func tokenizerConfig(keyReader io.Reader, timeFunc func() int64) auth.TokenizerConfig {
	var tokenValidDurationSec int64 = int64((24 * time.Hour).Seconds()) // 1 day
	cfg := auth.TokenizerConfig{
		KeyReader: keyReader,
		TimeFunc:  timeFunc,
		ValidSec:  tokenValidDurationSec,
	}
	return cfg
}

// gameRunnerConfig creates the configuration for running and managing games.
func (m mainFlags) gameRunnerConfig(log log.Logger, timeFunc func() int64, e embedParameters) (*gameController.RunnerConfig, error) {
	gameCfg, err := m.gameConfig(log, timeFunc, e)
	if err != nil {
		return nil, err
	}
	cfg := gameController.RunnerConfig{
		Log:        log,
		MaxGames:   4,
		GameConfig: *gameCfg,
	}
	return &cfg, nil
}

// gameConfig creates the base configuration for all games.
func (m mainFlags) gameConfig(log log.Logger, timeFunc func() int64, e embedParameters) (*gameController.Config, error) {
	p, err := pool.New(e.poolJSON)
	if err != nil {
		return nil, fmt.Errorf("loading tile shape pool: %w", err)
	}
	playerCfg := player.Config{
		WinPoints: 10,
	}
	shuffleStructureIDsFunc := func(ids []int) {
		rand.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}
	cfg := gameController.Config{
		Debug:                   m.debugGame,
		Log:                     log,
		TimeFunc:                timeFunc,
		MaxPlayers:              8,
		PlayerCfg:               playerCfg,
		Pool:                    p,
		IdlePeriod:              60 * time.Minute,
		ShuffleStructureIDsFunc: shuffleStructureIDsFunc,
		Config: game.Config{
			Board: board.Config{
				NumCols: 10,
				NumRows: 6,
			},
			TilesPerPlayer: 12,
			Category:       "pentominoes",
			RoundDuration:  15 * time.Minute,
		},
	}
	return &cfg, nil
}

// socketRunnerConfig creates the configuration for creating new sockets (each tab that is connected to the lobby).
func (m mainFlags) socketRunnerConfig(log log.Logger) socket.RunnerConfig {
	socketCfg := socket.Config{
		Debug:          m.debugGame,
		Log:            log,
		ReadWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		PingPeriod:     54 * time.Second, // readWait * 0.9
		IdlePeriod:     15 * time.Minute,
		HTTPPingPeriod: 10 * time.Minute,
	}
	cfg := socket.RunnerConfig{
		Log:              log,
		MaxSockets:       32,
		MaxPlayerSockets: 5,
		SocketConfig:     socketCfg,
	}
	return cfg
}

package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dorcasbeulah27/PowerOil-Backend/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect connects to MySQL with TLS, timeouts, pooling and retry.
func Connect(cfg config.DatabaseConfig, development bool) (*gorm.DB, error) {
	if DB != nil {
		return DB, nil
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	safeDSN := dsn
	if cfg.Pass != "" {
		safeDSN = strings.Replace(safeDSN, cfg.Pass, "******", 1)
	}
	zap.L().Info("connecting to database", zap.String("dsn", safeDSN))

	// GORM logger: verbose in development
	gormLogger := logger.Default.LogMode(logger.Silent)
	if development {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	// Retry connection with exponential backoff
	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}
	var db *gorm.DB
	backoff := time.Second
	for attempt := 0; attempt < retries; attempt++ {
		db, err = gorm.Open(gormmysql.Open(dsn), &gorm.Config{Logger: gormLogger})
		if err == nil {
			break
		}
		zap.L().Warn("database connect failed", zap.Int("attempt", attempt+1), zap.Error(err))
		time.Sleep(backoff)
		backoff *= 2
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.PingOnConnect {
		if err := pingWithTimeout(sqlDB, 5*time.Second); err != nil {
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
	}

	DB = db
	return DB, nil
}

func buildDSN(cfg config.DatabaseConfig) (string, error) {
	dsn := cfg.DSN
	if dsn == "" {
		params := cfg.Params
		if !strings.Contains(params, "tls=") {
			switch strings.ToLower(cfg.TLS) {
			case "true", "preferred":
				if cfg.TLSVerify {
					// custom TLS config registered below
					params += "&tls=custom"
				} else {
					params += "&tls=" + strings.ToLower(cfg.TLS)
				}
			case "skip-verify":
				params += "&tls=skip-verify"
			}
		}
		for _, p := range []string{"timeout=10s", "readTimeout=10s", "writeTimeout=10s"} {
			if !strings.Contains(params, strings.SplitN(p, "=", 2)[0]+"=") {
				params += "&" + p
			}
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name, strings.TrimPrefix(params, "&"))
	}

	if strings.Contains(dsn, "tls=custom") {
		tlsCfg := &tls.Config{}
		if cfg.TLSCAPath != "" {
			caCert, err := os.ReadFile(cfg.TLSCAPath)
			if err != nil {
				return "", fmt.Errorf("failed reading DB TLS CA file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caCert) {
				return "", errors.New("failed to append CA certs")
			}
			tlsCfg.RootCAs = pool
		}
		if cfg.TLSClientCert != "" && cfg.TLSClientKey != "" {
			cert, err := tls.LoadX509KeyPair(cfg.TLSClientCert, cfg.TLSClientKey)
			if err != nil {
				return "", fmt.Errorf("failed to load client cert/key: %w", err)
			}
			tlsCfg.Certificates = []tls.Certificate{cert}
		}
		if err := mysqldriver.RegisterTLSConfig("custom", tlsCfg); err != nil {
			return "", fmt.Errorf("failed to register TLS config: %w", err)
		}
	}
	return dsn, nil
}

// Ping checks the database is reachable, used by the health endpoint
func Ping(ctx context.Context) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func pingWithTimeout(db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return db.PingContext(ctx)
}

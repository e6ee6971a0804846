package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	t.Run("EncodesPassword", func(t *testing.T) {
		dsn := DSN(Config{Host: "db", Port: 3306, User: "sync", Password: "p@ss:w/rd", Name: "sclone", TimeoutSeconds: 5})
		assert.Equal(t, "sync:p%40ss%3Aw%2Frd@tcp(db:3306)/sclone?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s&readTimeout=5s&writeTimeout=5s", dsn)
	})

	t.Run("DefaultTimeout", func(t *testing.T) {
		dsn := DSN(Config{Host: "localhost", Port: 3306, User: "root", Name: "sclone"})
		assert.Contains(t, dsn, "timeout=30s")
	})
}

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "127.0.0.1",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "sclone",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_live_game.sql
var createLiveGameSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createLiveGameSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS live_game_answers;
				DROP TABLE IF EXISTS live_game_participants;
				DROP TABLE IF EXISTS live_game_questions;
				DROP TABLE IF EXISTS live_game_sessions;
				DROP TABLE IF EXISTS class_students;
				DROP TABLE IF EXISTS class_teachers;
				DROP TABLE IF EXISTS classes;
				DROP TABLE IF EXISTS vocab_words;
				DROP TABLE IF EXISTS vocab_sets;
			`)
			return err
		},
	)
}

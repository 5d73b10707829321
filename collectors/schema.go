package collectors

import (
	"context"

	"github.com/reusee/mts/storages"
)

var schema = []string{
	`create table if not exists samples (
		id          integer primary key autoincrement,
		process     text not null,
		collector   text not null,
		table_name  text not null,
		column_name text not null,
		tick        integer not null,
		type        text not null,
		timestamp   integer not null,
		format      text not null,
		data        blob not null
	)`,
	`create index if not exists idx_samples_column on samples(table_name, column_name, tick)`,
}

const insertSample = `insert into samples
	(process, collector, table_name, column_name, tick, type, timestamp, format, data)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Migrate creates the sample tables if missing.
func Migrate(ctx context.Context, db *storages.DB) error {
	return db.Migrate(ctx, schema...)
}

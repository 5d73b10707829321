package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/reusee/mts/collectors"
	"github.com/reusee/mts/storages"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Dump collected samples, or list collected columns without --table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := newSettings(cmd)
		if err != nil {
			return err
		}
		return dumpSamples(cmd.Context(), settings, cmd.OutOrStdout())
	},
}

func init() {
	flags := samplesCmd.Flags()
	flags.String(keyDB, "", "collector database path")
	flags.String(keyTable, "", "state table name")
	flags.String(keyColumn, "", "column name")
	flags.Uint64(keyFrom, 0, "first tick")
	flags.Uint64(keyTo, 0, "last tick, 0 for no limit")
}

func dumpSamples(ctx context.Context, settings *viper.Viper, out io.Writer) (err error) {
	table := settings.GetString(keyTable)
	column := settings.GetString(keyColumn)
	if table != "" && column == "" {
		return fmt.Errorf("--%s requires --%s", keyTable, keyColumn)
	}

	newScope(settings).Call(func(
		getDB storages.GetDB,
	) {
		err = func() (err error) {
			db, err := getDB()
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, db.Close())
			}()
			if err := collectors.Migrate(ctx, db); err != nil {
				return err
			}

			if table == "" {
				infos, err := collectors.Columns(ctx, db)
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Fprintf(out, "%s\t%s\t%d\n", info.Table, info.Column, info.Samples)
				}
				return nil
			}

			samples, err := collectors.Samples(ctx, db, table, column,
				settings.GetUint64(keyFrom),
				settings.GetUint64(keyTo),
			)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(out)
			for _, sample := range samples {
				if err := encoder.Encode(sample); err != nil {
					return err
				}
			}
			return nil
		}()
	})
	return
}

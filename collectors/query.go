package collectors

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/reusee/mts/storages"
	"github.com/reusee/mts/values"
)

// Sample is one persisted cell. Data is the value encoded with the codec
// named by Format.
type Sample struct {
	Process   string
	Collector string
	Table     string
	Column    string
	Tick      uint64
	Type      string
	Timestamp time.Duration
	Format    string
	Data      []byte
}

// sampleJSON keeps JSON-encoded cells readable; other formats are carried
// as bytes.
type sampleJSON struct {
	Process   string          `json:"process"`
	Collector string          `json:"collector"`
	Table     string          `json:"table"`
	Column    string          `json:"column"`
	Tick      uint64          `json:"tick"`
	Type      string          `json:"type"`
	Timestamp time.Duration   `json:"timestamp"`
	Format    string          `json:"format"`
	Data      json.RawMessage `json:"data,omitempty"`
	Raw       []byte          `json:"raw,omitempty"`
}

func (s Sample) MarshalJSON() ([]byte, error) {
	out := sampleJSON{
		Process:   s.Process,
		Collector: s.Collector,
		Table:     s.Table,
		Column:    s.Column,
		Tick:      s.Tick,
		Type:      s.Type,
		Timestamp: s.Timestamp,
		Format:    s.Format,
	}
	if s.Format == values.FormatJSON {
		out.Data = json.RawMessage(s.Data)
	} else {
		out.Raw = s.Data
	}
	return json.Marshal(out)
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	var in sampleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Sample{
		Process:   in.Process,
		Collector: in.Collector,
		Table:     in.Table,
		Column:    in.Column,
		Tick:      in.Tick,
		Type:      in.Type,
		Timestamp: in.Timestamp,
		Format:    in.Format,
		Data:      in.Raw,
	}
	if in.Format == values.FormatJSON {
		s.Data = []byte(in.Data)
	}
	return nil
}

// Samples returns the cells of a column with from <= tick <= to, in tick
// order. A zero to means no upper bound.
func Samples(ctx context.Context, db *storages.DB, table, column string, from, to uint64) ([]Sample, error) {
	upper := int64(math.MaxInt64)
	if to != 0 {
		upper = int64(to)
	}
	rows, err := db.Query(ctx, `select process, collector, table_name, column_name, tick, type, timestamp, format, data
		from samples
		where table_name = ? and column_name = ? and tick >= ? and tick <= ?
		order by tick, id`,
		table, column, int64(from), upper,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []Sample
	for rows.Next() {
		var s Sample
		var tick, timestamp int64
		if err := rows.Scan(&s.Process, &s.Collector, &s.Table, &s.Column, &tick, &s.Type, &timestamp, &s.Format, &s.Data); err != nil {
			return nil, err
		}
		s.Tick = uint64(tick)
		s.Timestamp = time.Duration(timestamp)
		ret = append(ret, s)
	}
	return ret, rows.Err()
}

// Value unmarshals the cell of a sample as a value of proto.
func (s Sample) Value(proto values.Prototype) (values.Value, error) {
	codec, err := values.CodecFor(s.Format)
	if err != nil {
		return values.Value{}, err
	}
	return codec.Unmarshal(s.Data, proto)
}

// Decode unmarshals the payload of a sample.
func Decode[T any](s Sample) (ret T, err error) {
	v, err := s.Value(values.PrototypeOf[T]())
	if err != nil {
		return ret, err
	}
	ret, ok := values.Cast[T](v)
	if !ok {
		return ret, values.ErrTypeMismatch
	}
	return ret, nil
}

type ColumnInfo struct {
	Table   string `json:"table"`
	Column  string `json:"column"`
	Samples int64  `json:"samples"`
}

func Columns(ctx context.Context, db *storages.DB) ([]ColumnInfo, error) {
	rows, err := db.Query(ctx, `select table_name, column_name, count(*)
		from samples
		group by table_name, column_name
		order by table_name, column_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []ColumnInfo
	for rows.Next() {
		var info ColumnInfo
		if err := rows.Scan(&info.Table, &info.Column, &info.Samples); err != nil {
			return nil, err
		}
		ret = append(ret, info)
	}
	return ret, rows.Err()
}

package pebblestore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"time"

	"github.com/valyala/fastjson"

	"github.com/rzbill/tablesink/pkg/store"
)

// Value encoding: uvarint docLen | doc | crc32c(doc), where doc is a JSON
// document holding the entity fields that are not part of the key.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var errCorruptValue = errors.New("pebblestore: corrupt entity value")

type entityDoc struct {
	Host    string         `json:"host"`
	PID     int            `json:"pid"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	TsMs    int64          `json:"ts"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func encodeEntity(e *store.Entity) ([]byte, error) {
	doc, err := json.Marshal(entityDoc{
		Host:    e.Hostname,
		PID:     e.PID,
		Level:   e.Level,
		Message: e.Message,
		TsMs:    e.CreatedAt.UnixMilli(),
		Meta:    e.Meta,
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 10+len(doc)+4)
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(len(doc)))
	out = append(out, tmp[:n]...)
	out = append(out, doc...)

	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(doc, castagnoli))
	out = append(out, crcb[:]...)
	return out, nil
}

var parsers fastjson.ParserPool

// decodeEntity unframes and parses a stored value. Key-derived fields
// (partition and sort key) are left for the caller to fill.
func decodeEntity(b []byte) (store.Entity, error) {
	dlen, n := binary.Uvarint(b)
	if n <= 0 || n+int(dlen)+4 != len(b) {
		return store.Entity{}, errCorruptValue
	}
	doc := b[n : n+int(dlen)]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	if crc32.Checksum(doc, castagnoli) != expect {
		return store.Entity{}, errCorruptValue
	}

	p := parsers.Get()
	defer parsers.Put(p)
	v, err := p.ParseBytes(doc)
	if err != nil {
		return store.Entity{}, errCorruptValue
	}

	e := store.Entity{
		Hostname:  string(v.GetStringBytes("host")),
		PID:       v.GetInt("pid"),
		Level:     string(v.GetStringBytes("level")),
		Message:   string(v.GetStringBytes("message")),
		CreatedAt: time.UnixMilli(v.GetInt64("ts")).UTC(),
	}
	if mv := v.Get("meta"); mv != nil {
		if m, ok := valueToAny(mv).(map[string]any); ok {
			e.Meta = m
		}
	}
	return e, nil
}

func valueToAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return nil
		}
		m := map[string]any{}
		obj.Visit(func(k []byte, v *fastjson.Value) {
			m[string(k)] = valueToAny(v)
		})
		return m
	case fastjson.TypeArray:
		arr, err := v.Array()
		if err != nil {
			return nil
		}
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			out = append(out, valueToAny(item))
		}
		return out
	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		return string(sb)
	case fastjson.TypeNumber:
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

package live

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"tokenscope/internal/token"
)

// Message types carried in the "type" field of every streamed struct.
const (
	TypeSnapshot = "snapshot"
	TypeUpdate   = "update"
)

var errMissingField = errors.New("missing field")

func floatList(vs []float64) *structpb.Value {
	items := make([]*structpb.Value, len(vs))
	for i, v := range vs {
		items[i] = structpb.NewNumberValue(v)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: items})
}

func recordFields(r token.Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":              structpb.NewStringValue(r.ID),
		"name":            structpb.NewStringValue(r.Name),
		"symbol":          structpb.NewStringValue(r.Symbol),
		"price":           structpb.NewNumberValue(r.Price),
		"change24h":       structpb.NewNumberValue(r.Change24h),
		"marketCap":       structpb.NewNumberValue(r.MarketCap),
		"volume24h":       structpb.NewNumberValue(r.Volume24h),
		"category":        structpb.NewStringValue(r.Category.Slug()),
		"history":         floatList(r.History),
		"liquidity":       structpb.NewNumberValue(r.Liquidity),
		"holders":         structpb.NewNumberValue(float64(r.Holders)),
		"transactions24h": structpb.NewNumberValue(float64(r.Transactions24h)),
	}}
}

// EncodeSnapshot builds the first message of a stream.
func EncodeSnapshot(records []token.Record, seq uint64) *structpb.Struct {
	items := make([]*structpb.Value, len(records))
	for i := range records {
		items[i] = structpb.NewStructValue(recordFields(records[i]))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(TypeSnapshot),
		"seq":     structpb.NewNumberValue(float64(seq)),
		"records": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}
}

// EncodeUpdate builds an update message.
func EncodeUpdate(u token.Update, seq uint64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":      structpb.NewStringValue(TypeUpdate),
		"seq":       structpb.NewNumberValue(float64(seq)),
		"id":        structpb.NewStringValue(u.ID),
		"price":     structpb.NewNumberValue(u.Price),
		"change24h": structpb.NewNumberValue(u.Change24h),
		"history":   floatList(u.History),
	}}
}

// MessageType returns the "type" field of a streamed message.
func MessageType(s *structpb.Struct) string {
	return s.GetFields()["type"].GetStringValue()
}

func decodeFloats(v *structpb.Value) []float64 {
	vals := v.GetListValue().GetValues()
	out := make([]float64, len(vals))
	for i, x := range vals {
		out[i] = x.GetNumberValue()
	}
	return out
}

func decodeRecord(s *structpb.Struct) (token.Record, error) {
	f := s.GetFields()
	id := f["id"].GetStringValue()
	if id == "" {
		return token.Record{}, fmt.Errorf("record: %w: id", errMissingField)
	}
	cat, err := token.ParseCategory(f["category"].GetStringValue())
	if err != nil {
		return token.Record{}, fmt.Errorf("record %s: %w", id, err)
	}
	return token.Record{
		ID:              id,
		Name:            f["name"].GetStringValue(),
		Symbol:          f["symbol"].GetStringValue(),
		Price:           f["price"].GetNumberValue(),
		Change24h:       f["change24h"].GetNumberValue(),
		MarketCap:       f["marketCap"].GetNumberValue(),
		Volume24h:       f["volume24h"].GetNumberValue(),
		Category:        cat,
		History:         decodeFloats(f["history"]),
		Liquidity:       f["liquidity"].GetNumberValue(),
		Holders:         int(f["holders"].GetNumberValue()),
		Transactions24h: int(f["transactions24h"].GetNumberValue()),
	}, nil
}

// DecodeSnapshot parses a snapshot message.
func DecodeSnapshot(s *structpb.Struct) ([]token.Record, error) {
	if t := MessageType(s); t != TypeSnapshot {
		return nil, fmt.Errorf("expected %s message, got %q", TypeSnapshot, t)
	}
	vals := s.GetFields()["records"].GetListValue().GetValues()
	out := make([]token.Record, 0, len(vals))
	for _, v := range vals {
		r, err := decodeRecord(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DecodeUpdate parses an update message.
func DecodeUpdate(s *structpb.Struct) (token.Update, error) {
	if t := MessageType(s); t != TypeUpdate {
		return token.Update{}, fmt.Errorf("expected %s message, got %q", TypeUpdate, t)
	}
	f := s.GetFields()
	id := f["id"].GetStringValue()
	if id == "" {
		return token.Update{}, fmt.Errorf("update: %w: id", errMissingField)
	}
	return token.Update{
		ID:        id,
		Price:     f["price"].GetNumberValue(),
		Change24h: f["change24h"].GetNumberValue(),
		History:   decodeFloats(f["history"]),
	}, nil
}

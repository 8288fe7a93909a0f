package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  job_id  ", Value: "  42  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "job_id" || fields[0].String != "42" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	enriched := WithFields(zap.New(core), zap.String(FieldSessionID, "s1"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldSessionID]; got != "s1" {
		t.Fatalf("expected session id s1, got %v", got)
	}

	// nil falls back to a no-op logger.
	WithFields(nil, zap.String("baz", "qux")).Info("another log")
}

func TestMatchFields(t *testing.T) {
	fields := MatchFields("c1", "7")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldCandidateID || fields[0].String != "c1" {
		t.Fatalf("unexpected candidate field: %+v", fields[0])
	}

	if fields[1].Key != FieldJobID || fields[1].String != "7" {
		t.Fatalf("unexpected job field: %+v", fields[1])
	}

	if fields := MatchFields("", "7"); len(fields) != 1 {
		t.Fatalf("expected empty candidate to be skipped, got %d fields", len(fields))
	}
}

package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/prediction-settlement/internal/domain/teamalias"
	teamaliasmock "github.com/riskibarqy/prediction-settlement/internal/mocks/domain/teamalias"
)

func TestAliasPayloadCodec(t *testing.T) {
	t.Parallel()

	in := teamalias.Alias{
		RawName:             "bayern münih",
		CanonicalTeamID:     "sportmonks:503",
		MappedCanonicalName: "Bayern Munich",
		Confidence:          0.95,
		Source:              teamalias.SourceLiveContext,
		UpdatedAt:           time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	raw, err := encodeAlias(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeAlias(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CanonicalTeamID != in.CanonicalTeamID || got.MappedCanonicalName != in.MappedCanonicalName ||
		got.Confidence != in.Confidence || got.Source != in.Source || !got.UpdatedAt.Equal(in.UpdatedAt) {
		t.Fatalf("unexpected alias: got=%+v want=%+v", got, in)
	}

	if _, err := decodeAlias([]byte(`{"raw_name":"x"}`)); err == nil {
		t.Fatalf("expected error for alias without canonical id")
	}
}

func TestTeamAliasKeyIsNormalized(t *testing.T) {
	t.Parallel()

	if got := teamAliasKey("  Bayern  MÜNIH"); got != "prediction-settlement:team_alias:bayern münih" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestTeamAliasRepository_RedisDownFallsBackToNext(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	next := teamaliasmock.NewRepository(t)
	want := teamalias.Alias{RawName: "dortmund", CanonicalTeamID: "sportmonks:68", Confidence: 0.95}
	next.On("GetByRawName", mock.Anything, "Dortmund").Return(want, true, nil).Once()
	next.On("Upsert", mock.Anything, want).Return(nil).Once()

	repo := NewTeamAliasRepository(next, client, time.Minute, nil)
	got, ok, err := repo.GetByRawName(context.Background(), "Dortmund")
	if err != nil || !ok {
		t.Fatalf("expected fallback lookup to succeed: ok=%v err=%v", ok, err)
	}
	if got.CanonicalTeamID != want.CanonicalTeamID {
		t.Fatalf("unexpected alias: got=%+v want=%+v", got, want)
	}
	if err := repo.Upsert(context.Background(), want); err != nil {
		t.Fatalf("upsert must not fail when only redis is down: %v", err)
	}
}

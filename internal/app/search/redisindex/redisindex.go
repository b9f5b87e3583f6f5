// Package redisindex stores search documents as Redis hashes indexed by
// RediSearch (FT.CREATE ... ON HASH) and queries them with FT.SEARCH.
package redisindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	"github.com/redis/rueidis"
)

const (
	DefaultKeyPrefix = "instructorsearch:doc:"
	DefaultIndexName = "instructorsearch:idx"
)

// Op names the Redis command an Error came from.
const (
	OpCreateIndex = "FT.CREATE"
	OpSearch      = "FT.SEARCH"
	OpHSet        = "HSET"
	OpDel         = "DEL"
	OpPing        = "PING"
)

// Error wraps a Redis failure with the command that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Config holds connection parameters for the Redis backend.
type Config struct {
	Addrs     []string
	Password  string
	KeyPrefix string
	IndexName string
}

type Index struct {
	client rueidis.Client
	prefix string
	name   string
}

var _ searchdoc.Index = (*Index)(nil)

// New connects to Redis. The server must have the search module (Redis 8+ or
// Redis Stack).
func New(cfg Config) (*Index, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redisindex: addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH replies are parsed as RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("redisindex: create client: %w", err)
	}
	return newWithClient(client, cfg), nil
}

func newWithClient(c rueidis.Client, cfg Config) *Index {
	ix := &Index{client: c, prefix: cfg.KeyPrefix, name: cfg.IndexName}
	if ix.prefix == "" {
		ix.prefix = DefaultKeyPrefix
	}
	if ix.name == "" {
		ix.name = DefaultIndexName
	}
	return ix
}

func (ix *Index) key(id string) string { return ix.prefix + id }

// EnsureSchema creates the FT index over the document hashes. An existing
// index is left as is.
func (ix *Index) EnsureSchema(ctx context.Context) error {
	cmd := ix.client.B().Arbitrary("FT.CREATE").Args(
		ix.name,
		"ON", "HASH",
		"PREFIX", "1", ix.prefix,
		"SCHEMA", searchdoc.SearchableTextField, "TEXT",
	).Build()
	if err := ix.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &Error{Op: OpCreateIndex, Err: err}
	}
	return nil
}

func (ix *Index) Upsert(ctx context.Context, doc searchdoc.Document) error {
	cmd := ix.client.B().Hset().Key(ix.key(doc.ID)).FieldValue().
		FieldValue(searchdoc.SearchableTextField, doc.SearchableText).
		Build()
	if err := ix.client.Do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpHSet, Err: err}
	}
	return nil
}

// Delete removes the document hash. DEL of a missing key is not an error.
func (ix *Index) Delete(ctx context.Context, id string) error {
	cmd := ix.client.B().Del().Key(ix.key(id)).Build()
	if err := ix.client.Do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpDel, Err: err}
	}
	return nil
}

// Query matches documents containing every term of text.
func (ix *Index) Query(ctx context.Context, text string, limit int) ([]searchdoc.Hit, error) {
	q := buildQuery(text)
	if q == "" || limit <= 0 {
		return []searchdoc.Hit{}, nil
	}
	cmd := ix.client.B().Arbitrary("FT.SEARCH").Args(
		ix.name, q,
		"NOCONTENT",
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	).Build()
	raw, err := ix.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &Error{Op: OpSearch, Err: err}
	}
	return parseHits(raw, ix.prefix)
}

func (ix *Index) Ping(ctx context.Context) error {
	if err := ix.client.Do(ctx, ix.client.B().Ping().Build()).Error(); err != nil {
		return &Error{Op: OpPing, Err: err}
	}
	return nil
}

func (ix *Index) Close() error {
	ix.client.Close()
	return nil
}

// buildQuery splits text the way RediSearch tokenizes indexed text and joins
// the terms with spaces (an AND in query syntax). Punctuation never reaches
// the query, so nothing needs escaping.
func buildQuery(text string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	return strings.Join(terms, " ")
}

// parseHits reads a NOCONTENT WITHSCORES reply:
// [total, key1, score1, key2, score2, ...]
func parseHits(raw []rueidis.RedisMessage, prefix string) ([]searchdoc.Hit, error) {
	hits := []searchdoc.Hit{}
	if len(raw) == 0 {
		return hits, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return hits, nil
	}

	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		hits = append(hits, searchdoc.Hit{
			ID:    strings.TrimPrefix(key, prefix),
			Score: score,
		})
	}
	return hits, nil
}

// isRedisErr reports whether err is a Redis server error mentioning substr.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

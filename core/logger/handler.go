package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

var errNoWriter = errors.New("logger: writer not initialized")

// botTokenRe matches a Telegram bot token as it appears in Bot API URLs and errors.
var botTokenRe = regexp.MustCompile(`[0-9]{5,}:[A-Za-z0-9_-]{30,}`)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = append([]string(nil), defaultKeyOrder...)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

// Handle renders r as one line. Context metadata never overrides explicit attributes.
func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errNoWriter
	}
	rec := make(record, 16)
	isJSON := h.cfg.format == formatJSON

	ts := r.Time.UTC()
	rec["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	rec["level"] = normalizeLevel(r.Level.String())
	if isJSON {
		rec["ts_unix_nano"] = ts.UnixNano()
	}

	for _, a := range h.attrs {
		rec.add("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.add(h.prefix, a)
		return true
	})
	rec.fromContext(ctx)

	if rid := rec.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			if isJSON {
				rec.setDefault("rid_full", rid)
			}
			rec["rid"] = compact
		}
	}
	if rec.str("event") == "" {
		event := r.Message
		if event == "" {
			event = "unknown"
		}
		rec["event"] = event
	}
	if rec.str("component") == "" {
		rec["component"] = "app"
	}
	rec.normalize()

	var line []byte
	if isJSON {
		var err error
		if line, err = rec.jsonLine(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = rec.kvLine(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" && a.Key != "" {
			a.Key = h.prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix += "." + name
	}
	return &clone
}

// record is the flattened set of fields of one log line.
type record map[string]any

// add flattens a, resolving LogValuers and expanding groups into dotted keys.
func (rec record) add(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := a.Key
	switch {
	case prefix == "":
	case key == "":
		key = prefix
	default:
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			rec.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if d, ok := durationOf(a.Value); ok {
		rec[durationKey(key)] = RoundMS(d).Milliseconds()
		return
	}
	if v, ok := plainValue(a.Value); ok {
		rec[key] = v
	}
}

func (rec record) str(key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (rec record) setDefault(key string, v any) {
	if _, ok := rec[key]; !ok {
		rec[key] = v
	}
}

func (rec record) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		rec.setDefault("rid", rid)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		rec.setDefault("update_id", id)
	}
	if id := UserIDFrom(ctx); id != 0 {
		rec.setDefault("user_id", id)
	}
	if id := ChatIDFrom(ctx); id != 0 {
		rec.setDefault("chat_id", id)
	}
	if name := HandlerFrom(ctx); name != "" {
		rec.setDefault("handler", name)
	}
}

// normalize canonicalizes enum fields, redacts bot tokens and drops empty values.
func (rec record) normalize() {
	rec["level"] = normalizeLevel(rec.str("level"))
	if s := rec.str("status"); s != "" {
		rec["status"], _ = normalizeStatus(s)
	}
	if o := rec.str("outcome"); o != "" {
		if v, ok := normalizeOutcome(o); ok {
			rec["outcome"] = v
		} else {
			delete(rec, "outcome")
		}
	}
	for k, v := range rec {
		switch s := v.(type) {
		case nil:
			delete(rec, k)
		case string:
			if s == "" {
				delete(rec, k)
			} else if strings.Contains(s, ":") {
				rec[k] = botTokenRe.ReplaceAllString(s, "<redacted>")
			}
		}
	}
}

// keys returns order first, then the remaining keys alphabetically.
func (rec record) keys(order []string) []string {
	out := make([]string, 0, len(rec))
	placed := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := rec[k]; ok && !placed[k] {
			out = append(out, k)
			placed[k] = true
		}
	}
	rest := len(out)
	for k := range rec {
		if !placed[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out[rest:])
	return out
}

func (rec record) jsonLine(order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range rec.keys(order) {
		data, err := json.Marshal(rec[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (rec record) kvLine(order []string) []byte {
	var buf bytes.Buffer
	for i, k := range rec.keys(order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(rec[k]))
	}
	return buf.Bytes()
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		s = fmt.Sprint(x)
	}
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}

func durationOf(v slog.Value) (time.Duration, bool) {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration(), true
	case slog.KindAny:
		d, ok := v.Any().(time.Duration)
		return d, ok
	}
	return 0, false
}

// plainValue converts v to a JSON-friendly Go value. Nil values are skipped.
func plainValue(v slog.Value) (any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return v.Bool(), true
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return int64(u), true
		}
		return v.Uint64(), true
	case slog.KindFloat64:
		return v.Float64(), true
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return nil, false
	case error:
		return x.Error(), true
	case string:
		return strings.TrimSpace(x), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// durationKey puts the unit into the key: duration -> duration_ms, fetch_duration -> fetch_duration_ms.
func durationKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

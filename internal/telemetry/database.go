package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/puffbuddy/backend/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey  = "telemetry:span"
	startKey = "telemetry:start"
)

// GORMPlugin returns a GORM plugin that traces statements and records
// their latency in the database_query_duration_seconds histogram
func GORMPlugin(system string) gorm.Plugin {
	return &gormPlugin{
		tracer: otel.Tracer("gorm"),
		system: system,
	}
}

type gormPlugin struct {
	tracer trace.Tracer
	system string
}

func (p *gormPlugin) Name() string {
	return "telemetry:gorm"
}

func (p *gormPlugin) Initialize(db *gorm.DB) error {
	type hook struct {
		register func(name string, fn func(*gorm.DB)) error
		name     string
		fn       func(*gorm.DB)
	}

	cb := db.Callback()
	hooks := []hook{
		{cb.Query().Before("gorm:query").Register, "telemetry:before_query", p.before("SELECT")},
		{cb.Create().Before("gorm:create").Register, "telemetry:before_create", p.before("INSERT")},
		{cb.Update().Before("gorm:update").Register, "telemetry:before_update", p.before("UPDATE")},
		{cb.Delete().Before("gorm:delete").Register, "telemetry:before_delete", p.before("DELETE")},
		{cb.Raw().Before("gorm:raw").Register, "telemetry:before_raw", p.before("RAW")},
		{cb.Query().After("gorm:query").Register, "telemetry:after_query", p.after},
		{cb.Create().After("gorm:create").Register, "telemetry:after_create", p.after},
		{cb.Update().After("gorm:update").Register, "telemetry:after_update", p.after},
		{cb.Delete().After("gorm:delete").Register, "telemetry:after_delete", p.after},
		{cb.Raw().After("gorm:raw").Register, "telemetry:after_raw", p.after},
	}

	for _, h := range hooks {
		if err := h.register(h.name, h.fn); err != nil {
			return fmt.Errorf("failed to register %s callback: %w", h.name, err)
		}
	}
	return nil
}

func (p *gormPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		db.InstanceSet(startKey, time.Now())
		db.InstanceSet("telemetry:operation", operation)

		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		_, span := p.tracer.Start(ctx, "db."+strings.ToLower(operation),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", p.system),
				attribute.String("db.table", tableName(db)),
				attribute.String("db.operation", operation),
			),
		)
		db.InstanceSet(spanKey, span)
	}
}

func (p *gormPlugin) after(db *gorm.DB) {
	operation := "UNKNOWN"
	if v, ok := db.InstanceGet("telemetry:operation"); ok {
		operation, _ = v.(string)
	}

	if v, ok := db.InstanceGet(startKey); ok {
		if started, ok := v.(time.Time); ok {
			metrics.Get().DatabaseQueryDuration.
				WithLabelValues(operation, tableName(db)).
				Observe(time.Since(started).Seconds())
		}
	}

	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if sql := db.Statement.SQL.String(); sql != "" {
		if len(sql) > 500 {
			sql = sql[:500] + "... (truncated)"
		}
		span.SetAttributes(attribute.String("db.statement", sql))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}

func tableName(db *gorm.DB) string {
	if db.Statement.Table != "" {
		return db.Statement.Table
	}
	return "unknown"
}

package tree

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xrbtree"
)

type fixupKind string

const (
	insertFixup fixupKind = "insert"
	eraseFixup  fixupKind = "erase"
)

var (
	rotateLeftAttrs  = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.direction", "left")))
	rotateRightAttrs = metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotate.direction", "right")))
)

// rbTreeStats is nil-safe. A nil stats means the stats is disabled.
type rbTreeStats struct {
	nodeCount   metric.Int64UpDownCounter
	insertCount metric.Int64Counter
	eraseCount  metric.Int64Counter
	rotateCount metric.Int64Counter
	fixupCount  metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseEraseCount() {
	if stats == nil {
		return
	}
	stats.eraseCount.Add(context.Background(), 1)
	stats.nodeCount.Add(context.Background(), -1)
}

func (stats *rbTreeStats) IncreaseRotateCount(dir RBDirection) {
	if stats == nil {
		return
	}
	switch dir {
	case Left:
		stats.rotateCount.Add(context.Background(), 1, rotateLeftAttrs)
	case Right:
		stats.rotateCount.Add(context.Background(), 1, rotateRightAttrs)
	default:
	}
}

func (stats *rbTreeStats) IncreaseFixupCount(kind fixupKind, fixCase int) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("rbtree.fixup.kind", string(kind)),
		attribute.String("rbtree.fixup.case", strconv.Itoa(fixCase)),
	)
	stats.fixupCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}

func newRBTreeStats(name string) *rbTreeStats {
	meter := otel.Meter(fmt.Sprintf("%s/%s", RBTreeStatsName, name))
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.node.count",
			metric.WithDescription("The number of nodes in the rbtree."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.count",
			metric.WithDescription("The number of keys inserted into the rbtree."),
		)),
		eraseCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.erase.count",
			metric.WithDescription("The number of nodes erased from the rbtree."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotate.count",
			metric.WithDescription("The number of rotations by the rbtree rebalance."),
		)),
		fixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.fixup.count",
			metric.WithDescription("The number of rebalance cases applied after insert and erase."),
		)),
	}
}

// Package writer provides the item writer of the order processing job.
package writer

import (
	"orderbatch/internal/order"
	"orderbatch/pkg/batch/component/writer"
)

// updateOrderQuery writes the processing outcome of one order.
const updateOrderQuery = `UPDATE orders SET status = ?, processed_date = ? WHERE id = ?`

// NewOrderStatusWriter creates the writer that persists the new status and
// processed date of each order. Each chunk runs inside one transaction, so a
// failing update rolls the whole chunk back.
func NewOrderStatusWriter() *writer.SqlBatchWriter[*order.Order] {
	return writer.NewSqlBatchWriter("orderStatusWriter", updateOrderQuery, func(o *order.Order) []any {
		return []any{o.Status, o.ProcessedDate, o.ID}
	})
}

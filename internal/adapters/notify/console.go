package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/tradescan/internal/domain"
	"github.com/olekukonko/tablewriter"
)

const defaultTableRows = 25

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
	rows  int
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table, rows: defaultTableRows}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool, rows int) *Console {
	if rows <= 0 {
		rows = defaultTableRows
	}
	return &Console{out: w, table: table, rows: rows}
}

// Notify imprime el resumen del run y, en modo tabla, los trades más recientes.
func (c *Console) Notify(_ context.Context, run domain.Run) error {
	if len(run.Trades) == 0 {
		fmt.Fprintf(c.out, "[%s] %s: no trades found (%d pools, %d failed)\n",
			time.Now().Format("15:04:05"), run.Pair, len(run.Pools), run.FailedPools())
		return nil
	}

	c.printCompact(run)
	if c.table {
		return c.printTable(run)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(run domain.Run) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s → %d trades | pools:%d failed:%d | balances %d/%d",
		time.Now().Format("15:04:05"), run.Pair, len(run.Trades),
		len(run.Pools), run.FailedPools(), run.Balances, run.Addresses)

	newest := run.Trades[0]
	oldest := run.Trades[len(run.Trades)-1]
	fmt.Fprintf(&sb, " | %s … %s", shortTime(oldest.Timestamp), shortTime(newest.Timestamp))
	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime los primeros c.rows trades.
func (c *Console) printTable(run domain.Run) error {
	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Time", "Trader", "In", "Out", "Price $", "Pool", "Chain", "Bal")

	for i, t := range run.Trades {
		if i >= c.rows {
			break
		}
		bal := "-"
		if len(t.TraderBalance) > 0 {
			bal = "yes"
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortTime(t.Timestamp),
			shortAddr(t.TraderAddress),
			t.InputAmount.StringFixed(4),
			t.OutputAmount.StringFixed(4),
			t.PriceUSD.StringFixed(6),
			shortAddr(t.PoolAddress),
			t.Chain,
			bal,
		)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("notify.Console: render table: %w", err)
	}
	if len(run.Trades) > c.rows {
		fmt.Fprintf(c.out, "  … %d more trades\n", len(run.Trades)-c.rows)
	}
	return nil
}

// shortTime recorta un timestamp ISO a HH:MM:SS.
func shortTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

// shortAddr abrevia direcciones largas a 0x1234…abcd.
func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

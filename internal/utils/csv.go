package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"wheeltracker/internal/domain"
)

const csvDateLayout = "2006-01-02"

// EventRecord is one row of an event import file. LinkRow refers to an
// earlier row of the same file (1-based); the importer resolves it to the
// store-assigned event ID.
type EventRecord struct {
	Ticker  string
	Event   *domain.WheelEvent
	LinkRow int // 0 = no link
}

// ReadEventsFromCSV parses an event import file. Columns:
// ticker,event_type,trade_date,quantity,contracts,price,strike,premium,fees,link_row,notes
func ReadEventsFromCSV(filename string) ([]EventRecord, error) {
	rows, err := readAll(filename, 11)
	if err != nil {
		return nil, err
	}

	records := make([]EventRecord, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // header is line 1
		tradeDate, err := time.Parse(csvDateLayout, row[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad trade_date %q: %w", line, row[2], err)
		}
		quantity, err := parseInt64(row[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad quantity %q: %w", line, row[3], err)
		}
		contracts, err := parseInt64(row[4])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad contracts %q: %w", line, row[4], err)
		}
		price, strike, premium, fees, err := parseMoney(row[5], row[6], row[7], row[8])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		linkRow := 0
		if row[9] != "" {
			linkRow, err = strconv.Atoi(row[9])
			if err != nil || linkRow < 1 || linkRow > i+1 {
				return nil, fmt.Errorf("line %d: link_row %q must reference an earlier row", line, row[9])
			}
		}
		records = append(records, EventRecord{
			Ticker: row[0],
			Event: &domain.WheelEvent{
				Type:      domain.EventType(row[1]),
				TradeDate: tradeDate,
				Quantity:  quantity,
				Contracts: int(contracts),
				Price:     price,
				Strike:    strike,
				Premium:   premium,
				Fees:      fees,
				Notes:     row[10],
			},
			LinkRow: linkRow,
		})
	}
	return records, nil
}

// ReadPositionsFromCSV parses a broker position snapshot. Columns:
// symbol,instrument_type,strike,expiration,quantity,market_value
func ReadPositionsFromCSV(filename string) ([]domain.BrokerPosition, error) {
	rows, err := readAll(filename, 6)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.BrokerPosition, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		p := domain.BrokerPosition{
			Symbol:         row[0],
			InstrumentType: domain.InstrumentType(row[1]),
		}
		if row[2] != "" {
			strike, err := decimal.NewFromString(row[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad strike %q: %w", line, row[2], err)
			}
			p.Strike = &strike
		}
		if row[3] != "" {
			exp, err := time.Parse(csvDateLayout, row[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad expiration %q: %w", line, row[3], err)
			}
			p.Expiration = &exp
		}
		if p.Quantity, err = parseInt64(row[4]); err != nil {
			return nil, fmt.Errorf("line %d: bad quantity %q: %w", line, row[4], err)
		}
		if p.MarketValue, err = decimal.NewFromString(row[5]); err != nil {
			return nil, fmt.Errorf("line %d: bad market_value %q: %w", line, row[5], err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// WriteLotsToCSV exports a rebuilt lot ledger.
func WriteLotsToCSV(lots []*domain.Lot, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"number", "source_event", "method", "acquire_date", "shares",
		"cost_basis", "status", "net_premium", "exit_price", "realized_pl", "remainder"})

	for _, l := range lots {
		writer.Write([]string{
			strconv.Itoa(l.Number),
			strconv.FormatInt(l.SourceEventID, 10),
			string(l.Method),
			l.AcquireDate.Format(csvDateLayout),
			strconv.FormatInt(l.Shares, 10),
			l.CostBasis.String(),
			string(l.Status),
			l.NetPremium.String(),
			l.ExitPrice.String(),
			l.RealizedPL.String(),
			strconv.FormatBool(l.IneligibleForCoverage),
		})
	}
	return writer.Error()
}

func readAll(filename string, wantCols int) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = wantCols
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil // skip header
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseMoney(price, strike, premium, fees string) (p, s, pr, f decimal.Decimal, err error) {
	if p, err = parseDecimal(price); err != nil {
		err = fmt.Errorf("bad price %q: %w", price, err)
		return
	}
	if s, err = parseDecimal(strike); err != nil {
		err = fmt.Errorf("bad strike %q: %w", strike, err)
		return
	}
	if pr, err = parseDecimal(premium); err != nil {
		err = fmt.Errorf("bad premium %q: %w", premium, err)
		return
	}
	if f, err = parseDecimal(fees); err != nil {
		err = fmt.Errorf("bad fees %q: %w", fees, err)
	}
	return
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

// CSVJournal is fed by concurrent traders; csv.Writer is not goroutine-safe,
// so every write goes through mu.
type CSVJournal struct {
	mu       sync.Mutex
	fills    *csv.Writer
	balances *csv.Writer
	ff, bf   *os.File
}

func NewCSV(fillsPath, balancesPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	bf, err := os.Create(balancesPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	bw := csv.NewWriter(bf)

	if err := fw.Write([]string{"tx_id", "run_id", "account_id", "instrument_id", "side", "quantity", "price", "executed_at"}); err != nil {
		return nil, err
	}
	if err := bw.Write([]string{"account_id", "balance", "loan_taken", "time"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	bw.Flush()
	if err := bw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{fills: fw, balances: bw, ff: ff, bf: bf}, nil
}

func (j *CSVJournal) RecordFill(f Fill) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.fills.Write([]string{
		strconv.FormatInt(f.TxID, 10),
		f.RunID,
		strconv.FormatInt(f.AccountID, 10),
		strconv.FormatInt(f.InstrumentID, 10),
		f.Side,
		strconv.FormatInt(f.Quantity, 10),
		f.Price.String(),
		f.ExecutedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordBalance(b BalanceSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.balances.Write([]string{
		strconv.FormatInt(b.AccountID, 10),
		b.Balance.String(),
		b.LoanTaken.String(),
		b.Time.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	j.balances.Flush()
	return j.balances.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.balances.Flush()
	if err := j.balances.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.bf.Close()
}

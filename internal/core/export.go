package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// RecordSchema is the Arrow layout of exported records. Missing years and
// missing metrics are nulls.
func RecordSchema() *arrow.Schema {
	fields := []arrow.Field{
		{Name: ColumnCountry, Type: arrow.BinaryTypes.String},
		{Name: ColumnYear, Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	}
	for _, def := range Metrics() {
		fields = append(fields, arrow.Field{Name: string(def.Metric), Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

// BuildArrowRecord converts records to a single Arrow record batch.
// The caller must Release the result.
func BuildArrowRecord(mem memory.Allocator, records []Record) arrow.Record {
	schema := RecordSchema()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	country := b.Field(0).(*array.StringBuilder)
	year := b.Field(1).(*array.Int32Builder)
	metrics := Metrics()

	for _, r := range records {
		country.Append(r.Country)
		if r.HasYear {
			year.Append(int32(r.Year))
		} else {
			year.AppendNull()
		}
		for i, def := range metrics {
			fb := b.Field(i + 2).(*array.Float64Builder)
			if r.Finite(def.Metric) {
				fb.Append(r.Value(def.Metric))
			} else {
				fb.AppendNull()
			}
		}
	}
	return b.NewRecord()
}

// WriteParquet writes records as a Snappy-compressed Parquet file.
func WriteParquet(w io.Writer, records []Record) error {
	mem := memory.NewGoAllocator()
	rec := BuildArrowRecord(mem, records)
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(rec.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// WriteCSV writes records with the recognized header. Missing values are
// written as empty cells.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	metrics := Metrics()

	header := make([]string, 0, len(metrics)+2)
	header = append(header, ColumnCountry, ColumnYear)
	for _, def := range metrics {
		header = append(header, string(def.Metric))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range records {
		row[0] = r.Country
		row[1] = ""
		if r.HasYear {
			row[1] = strconv.Itoa(r.Year)
		}
		for i, def := range metrics {
			row[i+2] = formatValue(r.Value(def.Metric))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

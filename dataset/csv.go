package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/movierec/core"
)

// noGenres 是 MovieLens 数据集中“无类别”的占位文本，归一化为空标签序列。
const noGenres = "(no genres listed)"

// CSVSource 读取 MovieLens 格式的快照文件：
//
//	movies.csv:  movieId,title,genres   （genres 以 '|' 分隔）
//	ratings.csv: userId,movieId,rating,timestamp
//
// 首行是表头；字段数或数值非法的行报带行号的错误，不静默跳过。
type CSVSource struct {
	// MoviesPath movies.csv 的路径
	MoviesPath string

	// RatingsPath ratings.csv 的路径
	RatingsPath string
}

func (s *CSVSource) Catalog(ctx context.Context) ([]core.CatalogEntry, error) {
	rows, err := readCSV(s.MoviesPath, 3)
	if err != nil {
		return nil, err
	}

	entries := make([]core.CatalogEntry, 0, len(rows))
	for i, row := range rows {
		movieID, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: %s row %d: bad movieId %q", s.MoviesPath, i+2, row[0]))
		}
		entries = append(entries, core.CatalogEntry{
			MovieID: movieID,
			Title:   row[1],
			Genres:  SplitGenres(row[2]),
		})
	}
	return entries, nil
}

func (s *CSVSource) Ratings(ctx context.Context) ([]core.RatingEvent, error) {
	rows, err := readCSV(s.RatingsPath, 4)
	if err != nil {
		return nil, err
	}

	events := make([]core.RatingEvent, 0, len(rows))
	for i, row := range rows {
		userID, err1 := strconv.ParseInt(row[0], 10, 64)
		movieID, err2 := strconv.ParseInt(row[1], 10, 64)
		rating, err3 := strconv.ParseFloat(row[2], 64)
		timestamp, err4 := strconv.ParseInt(row[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: %s row %d: bad rating event", s.RatingsPath, i+2))
		}
		events = append(events, core.RatingEvent{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    rating,
			Timestamp: timestamp,
		})
	}
	return events, nil
}

// SplitGenres 把 '|' 分隔的原始类别串归一化为标签序列。
// 空串与 "(no genres listed)" 都返回空序列。
func SplitGenres(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == noGenres {
		return nil
	}
	parts := strings.Split(raw, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

// readCSV 读取带表头的 CSV，校验每行字段数。
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	// 表头
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("dataset: read header of %s: %w", path, err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var (
	_ core.CatalogSource = (*CSVSource)(nil)
	_ core.RatingSource  = (*CSVSource)(nil)
)

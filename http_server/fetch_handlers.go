package http_server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/danthegoodman1/relfetch/external"
	"github.com/danthegoodman1/relfetch/fetch"
	"github.com/danthegoodman1/relfetch/parquet_export"
	"github.com/danthegoodman1/relfetch/partitioner"
	"github.com/danthegoodman1/relfetch/utils"
)

type (
	FetchReqBody struct {
		RelationRef
		Attrs []string
		// OrderBy terms are attribute names or KEY, each optionally followed by ASC or DESC
		OrderBy []string `validate:"dive,orderterm"`
		Limit   *int64   `validate:"omitempty,min=0"`
		Offset  *int64   `validate:"omitempty,min=0"`
		Format  *string  `validate:"omitempty,oneof=array frame"`
		AsDict  bool
		Squeeze bool
	}

	Fetch1ReqBody struct {
		RelationRef
		Attrs   []string
		Squeeze bool
	}

	ExportReqBody struct {
		RelationRef
		OrderBy []string `validate:"dive,orderterm"`
		Limit   *int64   `validate:"omitempty,min=0"`
		Offset  *int64   `validate:"omitempty,min=0"`
		// Store, when set, receives one file per partition instead of the response body
		Store       *string
		Partitioner []partitioner.PartitionPlan `validate:"dive"`
	}

	ExportStats struct {
		NumRows  int64
		NumFiles int64
		Files    []parquet_export.FileStats
		TimeMS   int64
	}
)

const fetchTimeout = time.Second * 60

func parseAttrs(names []string) []fetch.AttrRef {
	attrs := make([]fetch.AttrRef, 0, len(names))
	for _, n := range names {
		attrs = append(attrs, fetch.ParseAttr(n))
	}
	return attrs
}

func (s *HTTPServer) FetchHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), fetchTimeout)
	defer cancel()

	var reqBody FetchReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	expr, err := s.Relations.Resolve(ctx, reqBody.RelationRef)
	if err != nil {
		return c.fetchError(err, "error resolving relation")
	}

	p := fetch.Params{
		Attrs:   parseAttrs(reqBody.Attrs),
		Offset:  reqBody.Offset,
		Limit:   reqBody.Limit,
		OrderBy: reqBody.OrderBy,
		AsDict:  reqBody.AsDict,
		Squeeze: reqBody.Squeeze,
	}
	if reqBody.Format != nil {
		p.Format = utils.Ptr(fetch.Format(*reqBody.Format))
	}

	res, err := fetch.New(expr).Fetch(ctx, p)
	if err != nil {
		return c.fetchError(err, "error in Fetch")
	}
	return c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) Fetch1Handler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), fetchTimeout)
	defer cancel()

	var reqBody Fetch1ReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	expr, err := s.Relations.Resolve(ctx, reqBody.RelationRef)
	if err != nil {
		return c.fetchError(err, "error resolving relation")
	}

	res, err := fetch.NewOne(expr).Fetch1(ctx, reqBody.Squeeze, parseAttrs(reqBody.Attrs)...)
	if err != nil {
		return c.fetchError(err, "error in Fetch1")
	}
	return c.JSON(http.StatusOK, res)
}

// ExportParquetHandler fetches rows as records and responds with a single parquet file, or
// writes partitioned files to a configured store
func (s *HTTPServer) ExportParquetHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), fetchTimeout)
	defer cancel()

	start := time.Now()

	var reqBody ExportReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if len(reqBody.Partitioner) > 0 && reqBody.Store == nil {
		return c.String(http.StatusBadRequest, "Partitioner requires a Store")
	}
	var store external.ObjectStore
	if reqBody.Store != nil {
		var ok bool
		if store, ok = s.Stores[*reqBody.Store]; !ok {
			return c.String(http.StatusBadRequest, fmt.Sprintf("unknown store %s", *reqBody.Store))
		}
	}

	expr, err := s.Relations.Resolve(ctx, reqBody.RelationRef)
	if err != nil {
		return c.fetchError(err, "error resolving relation")
	}

	res, err := fetch.New(expr).Fetch(ctx, fetch.Params{
		Offset:  reqBody.Offset,
		Limit:   reqBody.Limit,
		OrderBy: reqBody.OrderBy,
		AsDict:  true,
	})
	if err != nil {
		return c.fetchError(err, "error in Fetch")
	}
	dicts, ok := res.(fetch.Dicts)
	if !ok {
		return c.InternalError(fmt.Errorf("unexpected result shape %s", res.Shape()), "error exporting rows")
	}

	if store != nil {
		files, err := parquet_export.WritePartitions(ctx, store, path.Join("exports", reqBody.Schema, reqBody.Table), dicts, reqBody.Partitioner)
		if err != nil {
			return c.fetchError(err, "error in WritePartitions")
		}
		stats := ExportStats{
			NumFiles: int64(len(files)),
			Files:    files,
			TimeMS:   time.Since(start).Milliseconds(),
		}
		for _, f := range files {
			stats.NumRows += f.NumRows
		}
		return c.JSON(http.StatusAccepted, stats)
	}

	var b bytes.Buffer
	stats, err := parquet_export.WriteRecords(&b, dicts)
	if err != nil {
		return c.fetchError(err, "error in WriteRecords")
	}

	fileName := fmt.Sprintf("%s.parquet", utils.GenKSortedID(""))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Response().Header().Set("X-Row-Count", strconv.FormatInt(stats.NumRows, 10))
	return c.Blob(http.StatusOK, "application/vnd.apache.parquet", b.Bytes())
}

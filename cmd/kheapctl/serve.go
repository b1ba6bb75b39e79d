package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/kheap"
)

var serveAddr string

func init() {
	cmd := newServeCmd()
	cmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
	rootCmd.AddCommand(cmd)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose a live heap over HTTP",
		Long: `The serve command boots a heap and serves it over HTTP with JSON responses.

Endpoints:
  GET  /stats              occupancy and call counters
  GET  /table              live runs and taken entries (?all=1 for every entry)
  GET  /verify             run-shape check of the block table
  POST /alloc?size=N       allocate N bytes (&zero=1 to zero them)
  POST /free?addr=A        free the run at address A

Example:
  kheapctl serve --addr :8080 --heap-size 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	return cmd
}

func runServe() error {
	k, err := bootHeap()
	if err != nil {
		return err
	}
	defer k.Close()

	srv := &heapServer{heap: k}
	server := &fasthttp.Server{
		Handler: srv.handler,
		Name:    "kheapctl",
	}
	printInfo("Serving heap on %s\n", serveAddr)
	logger.Info("serving heap", "addr", serveAddr, "blocks", k.Config().Blocks())
	return server.ListenAndServe(serveAddr)
}

type heapServer struct {
	heap *kheap.KernelHeap
}

type errorResponse struct {
	Error string `json:"error"`
}

type allocResponse struct {
	Addr   heap.Addr `json:"addr"`
	Blocks uint64    `json:"blocks"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (s *heapServer) handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	logger.Debug("request", "method", string(ctx.Method()), "path", path)

	switch {
	case ctx.IsGet() && path == "/stats":
		writeJSON(ctx, fasthttp.StatusOK, s.heap.Heap().Stats())
	case ctx.IsGet() && path == "/table":
		all := string(ctx.QueryArgs().Peek("all")) == "1"
		writeJSON(ctx, fasthttp.StatusOK, buildTableReport(s.heap, all))
	case ctx.IsGet() && path == "/verify":
		resp := verifyResponse{Valid: true}
		if err := s.heap.Heap().Verify(); err != nil {
			resp = verifyResponse{Error: err.Error()}
		}
		writeJSON(ctx, fasthttp.StatusOK, resp)
	case ctx.IsPost() && path == "/alloc":
		s.alloc(ctx)
	case ctx.IsPost() && path == "/free":
		s.free(ctx)
	default:
		writeJSON(ctx, fasthttp.StatusNotFound, errorResponse{Error: "not found"})
	}
}

func (s *heapServer) alloc(ctx *fasthttp.RequestCtx) {
	size, err := strconv.ParseUint(string(ctx.QueryArgs().Peek("size")), 0, 64)
	if err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Error: "size: " + err.Error()})
		return
	}
	var addr heap.Addr
	if string(ctx.QueryArgs().Peek("zero")) == "1" {
		addr, err = s.heap.Zalloc(size)
	} else {
		addr, err = s.heap.Malloc(size)
	}
	if err != nil {
		writeJSON(ctx, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, allocResponse{Addr: addr, Blocks: format.BlocksFor(size)})
}

func (s *heapServer) free(ctx *fasthttp.RequestCtx) {
	addr, err := strconv.ParseUint(string(ctx.QueryArgs().Peek("addr")), 0, 64)
	if err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{Error: "addr: " + err.Error()})
		return
	}
	if err := s.heap.Free(addr); err != nil {
		writeJSON(ctx, statusFor(err), errorResponse{Error: err.Error()})
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, heap.ErrOutOfMemory):
		return fasthttp.StatusInsufficientStorage
	case errors.Is(err, heap.ErrInvalidArgument), errors.Is(err, heap.ErrInvalidFree):
		return fasthttp.StatusBadRequest
	default:
		return fasthttp.StatusInternalServerError
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	body, err := jsonAPI.Marshal(v)
	if err != nil {
		ctx.Error(fmt.Sprintf("encode response: %v", err), fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

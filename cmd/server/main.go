package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tallyup/tallyup/internal/errs"
	"github.com/tallyup/tallyup/internal/service"
	"github.com/tallyup/tallyup/internal/storage/sqlite"
	"github.com/tallyup/tallyup/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/ledger.db")
	port := getEnv("PORT", "8080")

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	balances := service.NewBalanceService(store)

	// The write operations (expense creation, settlement, exit checks) are
	// invoked by the API collaborator in-process; this binary exposes the
	// operational surface plus the read-only balance views.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /groups/{id}/balances", func(w http.ResponseWriter, r *http.Request) {
		nets, err := balances.GroupBalances(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make(map[string]string, len(nets))
		for userID, net := range nets {
			out[userID] = net.String()
		}
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /groups/{id}/outstanding", func(w http.ResponseWriter, r *http.Request) {
		debts, err := balances.GroupOutstanding(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		type debt struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Amount string `json:"amount"`
		}
		out := make([]debt, len(debts))
		for i, d := range debts {
			out[i] = debt{From: d.From, To: d.To, Amount: d.Amount.String()}
		}
		writeJSON(w, out)
	})

	addr := ":" + port
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errs.IsClientError(err):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

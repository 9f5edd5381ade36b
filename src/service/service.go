package service

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mosaicnetworks/tally/src/app"
	cm "github.com/mosaicnetworks/tally/src/common"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/node"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// maxTxSize bounds the body of POST /tx.
const maxTxSize = 64 * 1024

// SubmitFunc hands a raw transaction to the node.
type SubmitFunc func(tx []byte) error

// Service is the HTTP API of a tally node.
type Service struct {
	bindAddress string
	node        *node.Node
	state       *app.State
	submit      SubmitFunc
	router      *chi.Mux
	server      *http.Server
	logger      *logrus.Entry
}

// NewService creates a Service. It does not listen until Serve is called.
func NewService(bindAddress string,
	n *node.Node,
	state *app.State,
	submit SubmitFunc,
	logger *logrus.Entry) *Service {

	service := Service{
		bindAddress: bindAddress,
		node:        n,
		state:       state,
		submit:      submit,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	service.registerHandlers()

	service.server = &http.Server{
		Addr:         bindAddress,
		Handler:      service.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering tally API handlers")

	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(s.instrument)

	s.router.Post("/tx", s.SubmitTx)
	s.router.Get("/receipt/{hash}", s.GetReceipt)
	s.router.Get("/block/{index}", s.GetBlock)
	s.router.Get("/stats", s.GetStats)
	s.router.Get("/tracker", s.GetTracker)
	s.router.Get("/periods", s.GetPeriods)
	s.router.Get("/period/{number}", s.GetPeriod)
	s.router.Route("/contributor/{principal}", func(r chi.Router) {
		r.Get("/", s.GetContributor)
		r.Get("/contributions", s.GetContributions)
		r.Get("/claimable/{period}", s.GetClaimable)
	})
	s.router.Get("/contribution/{address}", s.GetContribution)
	s.router.Get("/token/{address}", s.GetTokenAccount)
	s.router.Get("/mint/{address}", s.GetMint)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Handler returns the root handler, for tests and for embedding the API in
// another server.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving tally API")

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// Close stops the HTTP server.
func (s *Service) Close() error {
	return s.server.Close()
}

/*******************************************************************************
* Transactions and chain                                                       *
*******************************************************************************/

// SubmitTx accepts a raw signed transaction and queues it. The response
// carries the hash under which the receipt will be stored.
func (s *Service) SubmitTx(w http.ResponseWriter, r *http.Request) {
	raw, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxTxSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, uint32(ledger.InvalidTransaction), err)
		return
	}

	tx := new(ledger.Transaction)
	if err := tx.Unmarshal(raw); err != nil {
		writeError(w, http.StatusBadRequest, uint32(ledger.InvalidTransaction), err)
		return
	}
	if !tx.Verify() {
		writeError(w, http.StatusBadRequest, uint32(ledger.InvalidSignature),
			errors.New("invalid signature"))
		return
	}

	canonical, err := tx.Marshal()
	if err != nil {
		writeError(w, http.StatusBadRequest, uint32(ledger.InvalidTransaction), err)
		return
	}

	if err := s.submit(canonical); err != nil {
		writeError(w, http.StatusServiceUnavailable, uint32(ledger.Internal), err)
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitResponse{TxHash: ledger.TxHash(canonical)})
}

// GetReceipt returns the receipt of a committed transaction.
func (s *Service) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.state.GetReceipt(chi.URLParam(r, "hash"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// GetBlock returns a signed block.
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "index")

	blockIndex, err := strconv.Atoi(param)
	if err != nil {
		s.logger.WithError(err).Errorf("Parsing block_index parameter %s", param)
		writeError(w, http.StatusBadRequest, uint32(ledger.Internal), err)
		return
	}

	block, err := s.node.GetBlock(blockIndex)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

// GetStats returns the node stats.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.GetStats())
}

/*******************************************************************************
* Tracker                                                                      *
*******************************************************************************/

// GetTracker returns the tracker singleton.
func (s *Service) GetTracker(w http.ResponseWriter, r *http.Request) {
	res, err := s.state.GetTracker()
	s.reply(w, res, err)
}

// GetPeriods returns every period.
func (s *Service) GetPeriods(w http.ResponseWriter, r *http.Request) {
	res, err := s.state.GetPeriods()
	s.reply(w, res, err)
}

// GetPeriod returns one period.
func (s *Service) GetPeriod(w http.ResponseWriter, r *http.Request) {
	number, ok := uintParam(w, r, "number")
	if !ok {
		return
	}
	res, err := s.state.GetPeriod(number)
	s.reply(w, res, err)
}

// GetContributor returns the contributor record of a principal.
func (s *Service) GetContributor(w http.ResponseWriter, r *http.Request) {
	principal, ok := keyParam(w, r, "principal")
	if !ok {
		return
	}
	res, err := s.state.GetContributor(principal)
	if err == nil && res == nil {
		writeError(w, http.StatusNotFound, uint32(ledger.Internal),
			errors.New("contributor not found"))
		return
	}
	s.reply(w, res, err)
}

// GetContributions lists the contributions of a principal in a period, the
// current one unless ?period= is given.
func (s *Service) GetContributions(w http.ResponseWriter, r *http.Request) {
	principal, ok := keyParam(w, r, "principal")
	if !ok {
		return
	}

	var period uint64
	if p := r.URL.Query().Get("period"); p != "" {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, uint32(ledger.Internal), err)
			return
		}
		period = n
	} else {
		t, err := s.state.GetTracker()
		if err != nil {
			s.fail(w, err)
			return
		}
		period = t.CurrentPeriod
	}

	res, err := s.state.GetContributions(principal, period)
	if res == nil {
		res = []tracker.ContributionEntry{}
	}
	s.reply(w, res, err)
}

// GetClaimable previews a claim.
func (s *Service) GetClaimable(w http.ResponseWriter, r *http.Request) {
	principal, ok := keyParam(w, r, "principal")
	if !ok {
		return
	}
	period, ok := uintParam(w, r, "period")
	if !ok {
		return
	}
	res, err := s.state.GetClaimable(principal, period)
	s.reply(w, res, err)
}

// GetContribution returns a contribution by address.
func (s *Service) GetContribution(w http.ResponseWriter, r *http.Request) {
	addr, ok := keyParam(w, r, "address")
	if !ok {
		return
	}
	res, err := s.state.GetContribution(addr)
	s.reply(w, res, err)
}

/*******************************************************************************
* Token                                                                        *
*******************************************************************************/

// GetTokenAccount returns a token account by address.
func (s *Service) GetTokenAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := keyParam(w, r, "address")
	if !ok {
		return
	}
	res, err := s.state.GetTokenAccount(addr)
	s.reply(w, res, err)
}

// GetMint returns a mint by address.
func (s *Service) GetMint(w http.ResponseWriter, r *http.Request) {
	addr, ok := keyParam(w, r, "address")
	if !ok {
		return
	}
	res, err := s.state.GetMint(addr)
	s.reply(w, res, err)
}

/*******************************************************************************
* Helpers                                                                      *
*******************************************************************************/

func (s *Service) reply(w http.ResponseWriter, res interface{}, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("API request")
	}
	writeError(w, status, ledger.ErrorCode(err), err)
}

func statusOf(err error) int {
	switch {
	case cm.IsStore(err, cm.KeyNotFound),
		tracker.Is(err, tracker.NotInitialized),
		tracker.Is(err, tracker.ContributionNotFound),
		tracker.Is(err, tracker.InvalidParameters),
		token.Is(err, token.AccountNotFound):
		return http.StatusNotFound
	}

	var ce ledger.CodedError
	if errors.As(err, &ce) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func keyParam(w http.ResponseWriter, r *http.Request, name string) (solana.PublicKey, bool) {
	key, err := solana.PublicKeyFromBase58(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, uint32(ledger.Internal), err)
		return solana.PublicKey{}, false
	}
	return key, true
}

func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, uint32(ledger.Internal), err)
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code uint32, err error) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: err.Error()})
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/mosaicnetworks/tally/src/chain"
	"github.com/mosaicnetworks/tally/src/ledger"
	"github.com/mosaicnetworks/tally/src/service"
	"github.com/mosaicnetworks/tally/src/token"
	"github.com/mosaicnetworks/tally/src/tracker"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// APIError is returned for any non-2xx response of the service.
type APIError struct {
	Status  int
	Code    uint32
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s (code %d)", e.Status, e.Message, e.Code)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// Client talks to the HTTP API of a tally node.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *logrus.Entry
}

// NewClient creates a client for the service listening on addr, which is
// either host:port or a full URL.
func NewClient(addr string, logger *logrus.Entry) *Client {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.InfoLevel
		logger = logrus.NewEntry(log)
	}

	endpoint := addr
	if u, err := url.Parse(addr); err != nil || u.Scheme == "" || u.Host == "" {
		endpoint = "http://" + addr
	}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logger,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
	}).Debug("request")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		var e service.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

/*******************************************************************************
* Transactions                                                                 *
*******************************************************************************/

// SubmitTx posts a raw signed transaction and returns its hash.
func (c *Client) SubmitTx(ctx context.Context, raw []byte) (string, error) {
	var res service.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/tx", raw, &res); err != nil {
		return "", err
	}
	return res.TxHash, nil
}

// Send signs ins with key for program and submits it. The nonce is taken
// from the wall clock so that repeated identical instructions get distinct
// hashes.
func (c *Client) Send(ctx context.Context, key solana.PrivateKey, program solana.PublicKey, ins ledger.Instruction) (string, error) {
	raw, err := ledger.BuildTransaction(key, program, uint64(time.Now().UnixNano()), ins)
	if err != nil {
		return "", err
	}
	return c.SubmitTx(ctx, raw)
}

// GetReceipt fetches the receipt of a committed transaction.
func (c *Client) GetReceipt(ctx context.Context, txHash string) (*ledger.Receipt, error) {
	res := new(ledger.Receipt)
	if err := c.get(ctx, "/receipt/"+txHash, res); err != nil {
		return nil, err
	}
	return res, nil
}

// WaitReceipt polls for the receipt of txHash until it is committed or ctx
// is done.
func (c *Client) WaitReceipt(ctx context.Context, txHash string, poll time.Duration) (*ledger.Receipt, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		receipt, err := c.GetReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetBlock fetches a signed block.
func (c *Client) GetBlock(ctx context.Context, index int) (*chain.Block, error) {
	res := new(chain.Block)
	if err := c.get(ctx, "/block/"+strconv.Itoa(index), res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetStats fetches the node stats.
func (c *Client) GetStats(ctx context.Context) (map[string]string, error) {
	res := make(map[string]string)
	if err := c.get(ctx, "/stats", &res); err != nil {
		return nil, err
	}
	return res, nil
}

/*******************************************************************************
* Tracker                                                                      *
*******************************************************************************/

// GetTracker fetches the tracker.
func (c *Client) GetTracker(ctx context.Context) (*tracker.Tracker, error) {
	res := new(tracker.Tracker)
	if err := c.get(ctx, "/tracker", res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetPeriods fetches periods 0 through the current one.
func (c *Client) GetPeriods(ctx context.Context) ([]*tracker.Period, error) {
	var res []*tracker.Period
	if err := c.get(ctx, "/periods", &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetPeriod fetches one period.
func (c *Client) GetPeriod(ctx context.Context, number uint64) (*tracker.Period, error) {
	res := new(tracker.Period)
	if err := c.get(ctx, "/period/"+strconv.FormatUint(number, 10), res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetContributor fetches the contributor record of principal.
func (c *Client) GetContributor(ctx context.Context, principal solana.PublicKey) (*tracker.Contributor, error) {
	res := new(tracker.Contributor)
	if err := c.get(ctx, "/contributor/"+principal.String(), res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetContributions lists the contributions of principal in period, or in the
// current period when period is nil.
func (c *Client) GetContributions(ctx context.Context, principal solana.PublicKey, period *uint64) ([]tracker.ContributionEntry, error) {
	path := "/contributor/" + principal.String() + "/contributions"
	if period != nil {
		path += "?period=" + strconv.FormatUint(*period, 10)
	}

	var res []tracker.ContributionEntry
	if err := c.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetClaimable previews the claim of principal against period.
func (c *Client) GetClaimable(ctx context.Context, principal solana.PublicKey, period uint64) (*tracker.Claim, error) {
	res := new(tracker.Claim)
	path := "/contributor/" + principal.String() + "/claimable/" + strconv.FormatUint(period, 10)
	if err := c.get(ctx, path, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetContribution fetches a contribution by address.
func (c *Client) GetContribution(ctx context.Context, addr solana.PublicKey) (*tracker.Contribution, error) {
	res := new(tracker.Contribution)
	if err := c.get(ctx, "/contribution/"+addr.String(), res); err != nil {
		return nil, err
	}
	return res, nil
}

/*******************************************************************************
* Token                                                                        *
*******************************************************************************/

// GetTokenAccount fetches a token account.
func (c *Client) GetTokenAccount(ctx context.Context, addr solana.PublicKey) (*token.Account, error) {
	res := new(token.Account)
	if err := c.get(ctx, "/token/"+addr.String(), res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetMint fetches a mint.
func (c *Client) GetMint(ctx context.Context, addr solana.PublicKey) (*token.Mint, error) {
	res := new(token.Mint)
	if err := c.get(ctx, "/mint/"+addr.String(), res); err != nil {
		return nil, err
	}
	return res, nil
}

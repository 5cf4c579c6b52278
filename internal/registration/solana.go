package registration

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	snsRegisterTimeout = 15 * time.Second

	// Name record space requested from the SNS registrar, in bytes.
	snsRecordSpace = 1000
)

// SolanaSubmitter signs a prepared transaction with the custody key, refreshes
// its blockhash, submits it and waits for confirmation.
type SolanaSubmitter interface {
	CustodyAddress() solana.PublicKey
	SignAndSubmit(ctx context.Context, tx *solana.Transaction) (signature string, err error)
}

// SNSDriver registers .sol names. The SNS proxy service builds the whole
// registration transaction for the custody buyer; the driver only signs and
// submits it.
type SNSDriver struct {
	proxyURL  string
	submitter SolanaSubmitter
	http      *http.Client
}

func NewSNSDriver(proxyURL string, submitter SolanaSubmitter) *SNSDriver {
	return &SNSDriver{proxyURL: proxyURL, submitter: submitter, http: &http.Client{}}
}

type snsRegisterResponse struct {
	S      string `json:"s"`
	Result string `json:"result"`
}

func (d *SNSDriver) Register(ctx context.Context, label, ownerAddress string, onProgress ProgressFunc) (string, error) {
	buyer := d.submitter.CustodyAddress()

	progress(onProgress, "Fetching registration transaction from Bonfida...")

	raw, err := d.fetchRegistrationTx(ctx, buyer, label)
	if err != nil {
		return "", err
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("decode sns transaction: %w", err)
	}

	progress(onProgress, "Signing and submitting transaction...")

	signature, err := d.submitter.SignAndSubmit(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("sns submit: %w", err)
	}

	progress(onProgress, "Solana name registered")
	return signature, nil
}

func (d *SNSDriver) fetchRegistrationTx(ctx context.Context, buyer solana.PublicKey, label string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, snsRegisterTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/register?buyer=%s&domain=%s&space=%d&serialize=true",
		d.proxyURL, buyer.String(), url.QueryEscape(label), snsRecordSpace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sns register request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("sns register request: status %d: %s", resp.StatusCode, detail)
	}

	var out snsRegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sns register response: %w", err)
	}
	if out.S != "ok" {
		return nil, fmt.Errorf("sns registration rejected: %s", out.S)
	}

	raw, err := base64.StdEncoding.DecodeString(out.Result)
	if err != nil {
		return nil, fmt.Errorf("decode sns transaction payload: %w", err)
	}
	return raw, nil
}

package gateway

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/aastar-community/relay-gateway/internal/blsprotection"
)

// blsEndpoints groups the REST surface for the BLS aggregator protection
// subsystem (§4.E), kept separate from the JSON-RPC method table since it's
// a plain REST API rather than an rpcMethod.
type blsEndpoints struct {
	protector *blsprotection.Protector
}

type blsValidateRequest struct {
	Aggregator  common.Address `json:"aggregator"`
	MessageHash common.Hash    `json:"messageHash"`
	Signatures  []string       `json:"signatures"`
}

// validate runs §4.E's structural checks for one aggregation request
// without recording a result, letting a caller dry-run a submission.
func (b *blsEndpoints) validate(c *gin.Context) {
	var req blsValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sigs := make([][]byte, len(req.Signatures))
	for i, s := range req.Signatures {
		sigs[i] = []byte(s)
	}

	err, flags := b.protector.ValidateAndCheck(blsprotection.AggregationRequest{
		Aggregator:  req.Aggregator,
		MessageHash: req.MessageHash,
		Signatures:  sigs,
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": err.Error(), "flags": flags})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "flags": flags})
}

type blsAggregateRequest struct {
	blsValidateRequest
	LatencyMs float64 `json:"latencyMs"`
	Success   bool    `json:"success"`
}

// aggregate validates a request and then records its outcome against the
// aggregator's running stats, the combined path a real aggregation call
// site uses (validate, attempt, record).
func (b *blsEndpoints) aggregate(c *gin.Context) {
	var req blsAggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sigs := make([][]byte, len(req.Signatures))
	for i, s := range req.Signatures {
		sigs[i] = []byte(s)
	}

	validationErr, flags := b.protector.ValidateAndCheck(blsprotection.AggregationRequest{
		Aggregator:  req.Aggregator,
		MessageHash: req.MessageHash,
		Signatures:  sigs,
	})

	success := req.Success && validationErr == nil
	b.protector.RecordResult(req.Aggregator, success, req.LatencyMs, flags)

	if validationErr != nil {
		c.JSON(http.StatusOK, gin.H{"accepted": false, "reason": validationErr.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

func (b *blsEndpoints) status(c *gin.Context) {
	addr := c.Query("aggregator")
	if addr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aggregator query param required"})
		return
	}
	aggregator := common.HexToAddress(addr)
	blacklisted := b.protector.IsBlacklisted(aggregator)
	resp := gin.H{"aggregator": aggregator.Hex(), "blacklisted": blacklisted}
	if reason, ok := b.protector.BlacklistReason(aggregator); ok {
		resp["reason"] = reason
	}
	c.JSON(http.StatusOK, resp)
}

type blsBlacklistRequest struct {
	Aggregator common.Address `json:"aggregator"`
	Reason     string         `json:"reason"`
}

func (b *blsEndpoints) addBlacklist(c *gin.Context) {
	var req blsBlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.protector.Blacklist(req.Aggregator, req.Reason)
	c.JSON(http.StatusOK, gin.H{"blacklisted": true})
}

func (b *blsEndpoints) getBlacklist(c *gin.Context) {
	aggregator := common.HexToAddress(c.Param("address"))
	reason, ok := b.protector.BlacklistReason(aggregator)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"blacklisted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklisted": true, "reason": reason})
}

// addTrusted is the operator escape hatch for an aggregator that tripped
// the auto-blacklist rule incorrectly: it clears the blacklist entry
// directly, a manual override of the automatic rule.
func (b *blsEndpoints) addTrusted(c *gin.Context) {
	var req blsBlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b.protector.Unblacklist(req.Aggregator)
	c.JSON(http.StatusOK, gin.H{"trusted": true})
}

func (b *blsEndpoints) stats(c *gin.Context) {
	aggregator := common.HexToAddress(c.Param("address"))
	stats := b.protector.StatsFor(aggregator)
	c.JSON(http.StatusOK, gin.H{
		"aggregator":   aggregator.Hex(),
		"total":        stats.Total,
		"failed":       stats.Failed,
		"avgLatencyMs": stats.AvgLatencyMs,
		"maxLatencyMs": stats.MaxLatencyMs,
		"observedAt":   time.Now().UTC(),
	})
}

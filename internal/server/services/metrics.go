package services

import (
	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truthchain_verifications_total",
	Help: "Finalize attempts by verification mode and outcome.",
}, []string{"mode", "outcome"})

func observeVerification(mode common.VerificationMode, err error) {
	outcome := "verified"
	if err != nil {
		outcome = string(common.KindOf(err))
	}
	verificationsTotal.WithLabelValues(string(mode), outcome).Inc()
}

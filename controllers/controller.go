package controllers

import (
	"github.com/quickbite/payment-service/payment"
	"github.com/quickbite/payment-service/store"
)

// Handler bundles the injected collaborators the HTTP layer needs.
type Handler struct {
	Orchestrator *payment.Orchestrator
	Reconciler   *payment.Reconciler
	Store        store.PaymentStore
}

func NewHandler(orchestrator *payment.Orchestrator, reconciler *payment.Reconciler, paymentStore store.PaymentStore) *Handler {
	return &Handler{
		Orchestrator: orchestrator,
		Reconciler:   reconciler,
		Store:        paymentStore,
	}
}

package services

import "errors"

// Sentinel errors returned by the service layer; handlers map them to HTTP
// status codes.
var (
	ErrNotFound          = errors.New("ressource non trouvée")
	ErrConflict          = errors.New("ressource déjà existante")
	ErrProfileRequired   = errors.New("Profil utilisateur requis")
	ErrInvalidStatus     = errors.New("Statut invalide")
	ErrAlreadyPaid       = errors.New("Facture déjà payée")
	ErrClientHasInvoices = errors.New("Client lié à des factures existantes")
)

package utils

import (
	"github.com/sirupsen/logrus"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/models"
)

// ExportAuditLogs ships audit entries to the external log sink. The sink
// integration is still a stand-in; entries are emitted as structured logs.
func ExportAuditLogs(log *logrus.Logger, entries []models.AuditLog) error {
	for _, entry := range entries {
		log.WithFields(logrus.Fields{
			"entity":       entry.Entity,
			"action":       entry.Action,
			"performed_by": entry.PerformedBy,
			"at":           entry.Timestamp,
		}).Info("audit export")
	}
	return nil
}

package config

// QueueConfig configures audit event delivery over RabbitMQ.  An empty URL
// disables publishing and the consumer.
type QueueConfig struct {
    URL         string
    AuditQueue  string
    AuditLogDir string
    Consume     bool // run the audit log consumer inside the server process
}

func LoadQueueConfig() QueueConfig {
    return QueueConfig{
        URL:         envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
        AuditQueue:  envStr("AUDIT_QUEUE", "admin.audit"),
        AuditLogDir: envStr("AUDIT_LOG_DIR", "logs"),
        Consume:     envBool("AUDIT_CONSUMER", true),
    }
}

package storage

// Timestamps are TEXT in SQLite ("YYYY-MM-DD HH:MM:SS", UTC) and TIMESTAMP in
// PostgreSQL. Movement dates stay text in both so a court value that cannot
// be parsed is still stored and deduplicated verbatim.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS processos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		numero_processo TEXT NOT NULL,
		titulo TEXT NOT NULL DEFAULT '',
		tribunal_sigla TEXT,
		tribunal_nome TEXT,
		uf TEXT,
		ultima_movimentacao TEXT,
		data_ultima_movimentacao TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processos_workspace ON processos (workspace_id)`,
	`CREATE TABLE IF NOT EXISTS processo_monitor_config (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		processo_id INTEGER NOT NULL UNIQUE REFERENCES processos (id) ON DELETE CASCADE,
		workspace_id INTEGER NOT NULL,
		ativo INTEGER NOT NULL DEFAULT 1,
		frequencia TEXT NOT NULL DEFAULT 'daily',
		ultima_verificacao TEXT,
		total_movimentacoes INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_monitor_config_rotation ON processo_monitor_config (ativo, ultima_verificacao)`,
	`CREATE TABLE IF NOT EXISTS movimentacoes_processo (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		processo_id INTEGER NOT NULL REFERENCES processos (id) ON DELETE CASCADE,
		workspace_id INTEGER NOT NULL,
		codigo_movimento INTEGER NOT NULL,
		nome_movimento TEXT NOT NULL DEFAULT '',
		data_movimento TEXT NOT NULL,
		complementos TEXT NOT NULL DEFAULT '[]',
		fonte TEXT NOT NULL DEFAULT 'datajud',
		lida INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (processo_id, codigo_movimento, data_movimento)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movimentacoes_workspace_created ON movimentacoes_processo (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS alertas_notificacoes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		processo_id INTEGER REFERENCES processos (id) ON DELETE CASCADE,
		movimentacao_id INTEGER REFERENCES movimentacoes_processo (id) ON DELETE SET NULL,
		tipo TEXT NOT NULL,
		titulo TEXT NOT NULL,
		mensagem TEXT NOT NULL DEFAULT '',
		lida INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		lida_em TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alertas_workspace ON alertas_notificacoes (workspace_id, lida, created_at)`,
	`CREATE TABLE IF NOT EXISTS datajud_consulta_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		processo_id INTEGER NOT NULL,
		numero_processo TEXT NOT NULL,
		tribunal TEXT NOT NULL DEFAULT '',
		endpoint TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		movimentacoes_encontradas INTEGER NOT NULL DEFAULT 0,
		movimentacoes_novas INTEGER NOT NULL DEFAULT 0,
		erro TEXT,
		tempo_resposta_ms INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consulta_logs_process ON datajud_consulta_logs (processo_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_consulta_logs_workspace ON datajud_consulta_logs (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		nome TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		telefone TEXT NOT NULL DEFAULT '',
		alerta_email INTEGER NOT NULL DEFAULT 0,
		alerta_whatsapp INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS prazos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		processo_id INTEGER REFERENCES processos (id) ON DELETE SET NULL,
		titulo TEXT NOT NULL,
		data_prazo TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pendente'
	)`,
	`CREATE TABLE IF NOT EXISTS notificacoes_enviadas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id INTEGER NOT NULL,
		tipo TEXT NOT NULL,
		entidade_id INTEGER NOT NULL,
		marcador TEXT NOT NULL,
		enviado_em TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (workspace_id, tipo, entidade_id, marcador)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS processos (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		numero_processo VARCHAR(32) NOT NULL,
		titulo TEXT NOT NULL DEFAULT '',
		tribunal_sigla VARCHAR(16),
		tribunal_nome TEXT,
		uf VARCHAR(2),
		ultima_movimentacao TEXT,
		data_ultima_movimentacao VARCHAR(19),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_processos_workspace ON processos (workspace_id)`,
	`CREATE TABLE IF NOT EXISTS processo_monitor_config (
		id BIGSERIAL PRIMARY KEY,
		processo_id BIGINT NOT NULL UNIQUE REFERENCES processos (id) ON DELETE CASCADE,
		workspace_id BIGINT NOT NULL,
		ativo BOOLEAN NOT NULL DEFAULT TRUE,
		frequencia VARCHAR(16) NOT NULL DEFAULT 'daily',
		ultima_verificacao TIMESTAMP,
		total_movimentacoes INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_monitor_config_rotation ON processo_monitor_config (ativo, ultima_verificacao)`,
	`CREATE TABLE IF NOT EXISTS movimentacoes_processo (
		id BIGSERIAL PRIMARY KEY,
		processo_id BIGINT NOT NULL REFERENCES processos (id) ON DELETE CASCADE,
		workspace_id BIGINT NOT NULL,
		codigo_movimento INTEGER NOT NULL,
		nome_movimento TEXT NOT NULL DEFAULT '',
		data_movimento VARCHAR(19) NOT NULL,
		complementos TEXT NOT NULL DEFAULT '[]',
		fonte VARCHAR(16) NOT NULL DEFAULT 'datajud',
		lida BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (processo_id, codigo_movimento, data_movimento)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_movimentacoes_workspace_created ON movimentacoes_processo (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS alertas_notificacoes (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		processo_id BIGINT REFERENCES processos (id) ON DELETE CASCADE,
		movimentacao_id BIGINT REFERENCES movimentacoes_processo (id) ON DELETE SET NULL,
		tipo VARCHAR(16) NOT NULL,
		titulo TEXT NOT NULL,
		mensagem TEXT NOT NULL DEFAULT '',
		lida BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		lida_em TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alertas_workspace ON alertas_notificacoes (workspace_id, lida, created_at)`,
	`CREATE TABLE IF NOT EXISTS datajud_consulta_logs (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		processo_id BIGINT NOT NULL,
		numero_processo VARCHAR(32) NOT NULL,
		tribunal VARCHAR(16) NOT NULL DEFAULT '',
		endpoint TEXT NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL,
		movimentacoes_encontradas INTEGER NOT NULL DEFAULT 0,
		movimentacoes_novas INTEGER NOT NULL DEFAULT 0,
		erro TEXT,
		tempo_resposta_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consulta_logs_process ON datajud_consulta_logs (processo_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_consulta_logs_workspace ON datajud_consulta_logs (workspace_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		nome TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		telefone VARCHAR(32) NOT NULL DEFAULT '',
		alerta_email BOOLEAN NOT NULL DEFAULT FALSE,
		alerta_whatsapp BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS prazos (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		processo_id BIGINT REFERENCES processos (id) ON DELETE SET NULL,
		titulo TEXT NOT NULL,
		data_prazo DATE NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pendente'
	)`,
	`CREATE TABLE IF NOT EXISTS notificacoes_enviadas (
		id BIGSERIAL PRIMARY KEY,
		workspace_id BIGINT NOT NULL,
		tipo VARCHAR(32) NOT NULL,
		entidade_id BIGINT NOT NULL,
		marcador VARCHAR(64) NOT NULL,
		enviado_em TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (workspace_id, tipo, entidade_id, marcador)
	)`,
}

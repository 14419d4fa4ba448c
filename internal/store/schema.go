package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// masterdataSchema mirrors the masterdata tables of the lobby server.
const masterdataSchema = `
CREATE TABLE IF NOT EXISTS m_string
(
    key   text,
    value text,
    PRIMARY KEY (key)
);
CREATE TABLE IF NOT EXISTS m_ban
(
    key     text,
    until   timestamp,
    created timestamp,
    PRIMARY KEY (key)
);
CREATE TABLE IF NOT EXISTS m_lobby_setting
(
    platform           text,
    disk               text,
    no                 integer,
    name               text,
    mcs_region         text default '',
    comment            text default '',
    reminder           text default '',
    rule_id            text default '',
    enable_force_start integer not null,
    team_shuffle       integer not null,
    ping_limit         integer not null,
    ping_region        text default '',
    patch_names        text default '',
    win_rate_limit     integer default 0,
    min_client_version text default '',
    PRIMARY KEY (platform, disk, no)
);
CREATE TABLE IF NOT EXISTS m_rule
(
    id             text,
    difficulty     integer not null,
    damage_level   integer not null,
    timer          integer not null,
    team_flag      integer not null,
    stage_flag     integer not null,
    ms_flag        integer not null,
    renpo_vital    integer not null,
    zeon_vital     integer not null,
    ma_flag        integer not null,
    reload_flag    integer not null,
    boost_keep     integer not null,
    redar_flag     integer not null,
    lockon_flag    integer not null,
    onematch       integer not null,
    renpo_mask_ps2 integer not null,
    zeon_mask_ps2  integer not null,
    auto_rebattle  integer not null,
    no_ranking     integer not null,
    cpu_flag       integer not null,
    select_look    integer not null,
    renpo_mask_dc  integer not null,
    zeon_mask_dc   integer not null,
    stage_no       integer not null,
    PRIMARY KEY (id)
);
CREATE TABLE IF NOT EXISTS m_patch
(
    platform   text not null,
    disk       text not null,
    name       text not null,
    write_once integer not null,
    codes      text not null,
    PRIMARY KEY (platform, disk, name)
);
`

// MasterdataTables lists the tables created by InitSchema.
var MasterdataTables = []string{"m_string", "m_ban", "m_lobby_setting", "m_rule", "m_patch"}

// InitSchema creates the masterdata tables when they do not exist yet. It is
// meant for development databases; production schemas are owned by the lobby
// server.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, masterdataSchema); err != nil {
		return fmt.Errorf("failed to create masterdata schema: %w", err)
	}
	return nil
}

package core

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"

	"hashvote/config"
	"hashvote/model"
)

type Postgres struct {
	db *pg.DB

	ctx context.Context
}

func NewPostgres(cfg *config.Postgres) *Postgres {
	ctx := context.Background()

	opts := &pg.Options{
		Addr:     *cfg.Address,
		User:     *cfg.Username,
		Password: *cfg.Password,
		Database: *cfg.Database,
	}
	if cfg.PoolSize != nil {
		opts.PoolSize = *cfg.PoolSize
	}

	db := pg.Connect(opts)
	if err := db.Ping(ctx); err != nil {
		panic(err)
	}

	return &Postgres{
		db: db,

		ctx: ctx,
	}
}

func (p *Postgres) Close() {
	p.db.Close()
}

// CreateSchema 初始化账本表结构
func (p *Postgres) CreateSchema() error {
	if err := p.db.Model((*model.Block)(nil)).CreateTable(&orm.CreateTableOptions{IfNotExists: true}); err != nil {
		return err
	}

	// The composite constraint is the authoritative double-vote guard.
	queries := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS unique_vote ON blocks (poll_id, voter_hash)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ix_blocks_block_hash ON blocks (block_hash)",
		"CREATE INDEX IF NOT EXISTS ix_blocks_poll_id ON blocks (poll_id)",
	}
	for _, q := range queries {
		if _, err := p.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// ChainTip returns the newest block hash for the poll, or the genesis
// sentinel for an empty chain.
func (p *Postgres) ChainTip(pollID string) (string, error) {
	var block model.Block
	if err := p.db.Model(&block).Where("poll_id = ?", pollID).Order("id DESC").Limit(1).First(); err != nil {
		if err == pg.ErrNoRows {
			return model.GenesisHash, nil
		}
		return "", err
	}
	return block.BlockHash, nil
}

func (p *Postgres) HasVoted(pollID, voterHash string) (bool, error) {
	count, err := p.db.Model((*model.Block)(nil)).Where("poll_id = ? and voter_hash = ?", pollID, voterHash).Count()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// PollBlocks returns the poll's blocks in insertion order.
func (p *Postgres) PollBlocks(pollID string) ([]model.Block, error) {
	var blocks []model.Block
	if err := p.db.Model(&blocks).Where("poll_id = ?", pollID).Order("id ASC").Select(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (p *Postgres) AllBlocks() ([]model.Block, error) {
	var blocks []model.Block
	if err := p.db.Model(&blocks).Order("id ASC").Select(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// InsertBlock 写入投票块数据
//
// The insert runs in a transaction; a uniqueness violation (duplicate voter,
// or a commit race lost to another writer) surfaces as ConflictError and the
// transaction rolls back, so no partial block is ever written.
func (p *Postgres) InsertBlock(block *model.Block) error {
	return p.db.RunInTransaction(p.ctx, func(tx *pg.Tx) error {
		if _, err := tx.Model(block).Insert(); err != nil {
			if pgErr, ok := err.(pg.Error); ok && pgErr.IntegrityViolation() {
				return &ConflictError{PollId: block.PollId, VoterHash: block.VoterHash}
			}
			return err
		}
		return nil
	})
}

// PollStats aggregates vote counts and vote times per poll.
func (p *Postgres) PollStats() ([]model.Poll, error) {
	var polls []model.Poll
	if err := p.db.Model((*model.Block)(nil)).
		Column("poll_id").
		ColumnExpr("count(*) AS votes").
		ColumnExpr("min(timestamp) AS first_vote_at").
		ColumnExpr("max(timestamp) AS last_vote_at").
		Group("poll_id").
		Order("votes DESC").
		Select(&polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// federails
// Copyright (C) federails authors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/klppl/federails/internal/config"
	"github.com/klppl/federails/internal/db/bundb"
	"github.com/klppl/federails/internal/federation/dereference"
	"github.com/klppl/federails/internal/fedmodel"
	"github.com/klppl/federails/internal/httpclient"
	"github.com/klppl/federails/internal/store"
	"github.com/spf13/cobra"
)

func adminCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "admin",
		Short: "one-off administrative actions",
	}
	root.AddCommand(probeInstanceCommand())
	return root
}

func probeInstanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe-instance [domain]",
		Short: "probe a remote instance's nodeinfo and print its software/version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return probeInstance(cmd.Context(), cfg, args[0])
		},
	}
}

func probeInstance(ctx context.Context, cfg *config.Config, domain string) error {
	db, err := bundb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.Open(db)
	client := httpclient.New(httpclient.Config{Timeout: 15 * time.Second})
	fetcher := dereference.New(client, st, cfg.Hostname)

	info, err := fetcher.FetchNodeInfo(ctx, domain)
	if err != nil {
		return fmt.Errorf("admin probe-instance: %w", err)
	}

	fmt.Printf("%s: %s %s\n", domain, info.Software.Name, info.Software.Version)

	inst, err := st.GetInstanceByDomain(ctx, domain)
	if err != nil {
		inst = &fedmodel.Instance{Domain: domain}
		if err := st.PutInstance(ctx, inst); err != nil {
			return err
		}
	}
	inst.Software = info.Software.Name
	inst.Version = info.Software.Version
	inst.UpdatedAt = time.Now()
	return st.UpdateInstance(ctx, inst)
}

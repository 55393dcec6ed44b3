// SPDX-License-Identifier: AGPL-3.0-or-later
// nxdnhost - Run an NXDN Type-C trunked repeater host in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
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
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/dvm-nxdn/nxdnhost>

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type statusResponse struct {
	RF            string `json:"RF"`
	NT            string `json:"NT"`
	CCHalted      bool   `json:"CCHalted"`
	CCSeq         int    `json:"CCSeq"`
	Authoritative bool   `json:"Authoritative"`
	PermittedTG   uint32 `json:"PermittedTG"`
}

type voiceChannel struct {
	ChNo  int    `json:"ChNo"`
	SrcID uint32 `json:"SrcID"`
	Group bool   `json:"Group"`
	Voice bool   `json:"Voice"`
}

// newStatusCommand renders the live control-channel and voice-channel
// table for an operator — an admin REST client, not part of the
// protocol core, grounded in the teacher corpus's olekukonko/tablewriter
// + fatih/color CLI reporting idiom.
func newStatusCommand() *cobra.Command {
	var addr, token string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the live control-channel and voice-channel status of a running nxdnhost",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(addr, token)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "Admin API base URL")
	cmd.Flags().StringVar(&token, "token", "", "Admin API password")
	return cmd
}

func runStatus(addr, token string) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second, Jar: jar}

	if token != "" {
		if err := authenticate(client, addr, token); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	var st statusResponse
	if err := getJSON(client, addr+"/status", &st); err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	var grants map[string]voiceChannel
	if err := getJSON(client, addr+"/voice-ch", &grants); err != nil {
		return fmt.Errorf("failed to fetch voice channels: %w", err)
	}

	printSiteTable(st)
	printVoiceTable(grants)
	return nil
}

func authenticate(client *http.Client, addr, token string) error {
	body, err := json.Marshal(map[string]string{"passwordHash": token})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, addr+"/auth", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("admin API returned %d", resp.StatusCode)
	}
	return nil
}

func getJSON(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("admin API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printSiteTable(st statusResponse) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})

	rfColor := color.New(color.FgGreen).SprintFunc()
	if st.RF != "LISTENING" {
		rfColor = color.New(color.FgYellow).SprintFunc()
	}
	ntColor := color.New(color.FgGreen).SprintFunc()
	if st.NT != "IDLE" {
		ntColor = color.New(color.FgYellow).SprintFunc()
	}

	table.Append([]string{"RF", rfColor(st.RF)})
	table.Append([]string{"Net", ntColor(st.NT)})
	table.Append([]string{"CC halted", strconv.FormatBool(st.CCHalted)})
	table.Append([]string{"CC sequence", strconv.Itoa(st.CCSeq)})
	table.Append([]string{"Authoritative", strconv.FormatBool(st.Authoritative)})
	if !st.Authoritative {
		table.Append([]string{"Permitted TG", strconv.FormatUint(uint64(st.PermittedTG), 10)})
	}
	table.Render()
}

func printVoiceTable(grants map[string]voiceChannel) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Dst ID", "Ch", "Src ID", "Group", "Voice"})

	priority := color.New(color.FgRed, color.Bold).SprintFunc()
	for dst, g := range grants {
		row := []string{
			dst, strconv.Itoa(g.ChNo), strconv.FormatUint(uint64(g.SrcID), 10),
			strconv.FormatBool(g.Group), strconv.FormatBool(g.Voice),
		}
		if !g.Group {
			for i := range row {
				row[i] = priority(row[i])
			}
		}
		table.Append(row)
	}
	table.Render()
}

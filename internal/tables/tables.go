// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tables loads and saves the five policy tables (rules, hosts,
// hostgroups, services, networks) as space-delimited CSV files, one per
// table, mirroring lib/flcore.py's loadcsv/savecsv.
package tables

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/awesome-security/firelet/internal/errors"
	"github.com/awesome-security/firelet/internal/logging"
	"github.com/awesome-security/firelet/internal/model"
)

const fieldDelimiter = ' '

func openReader(dir, name string) (*csv.Reader, *os.File, error) {
	path := filepath.Join(dir, name+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, errors.KindUnavailable, "opening %s", path)
	}
	r := csv.NewReader(f)
	r.Comma = fieldDelimiter
	r.FieldsPerRecord = -1
	return r, f, nil
}

func writeRecords(dir, name string, records [][]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "creating table directory %s", dir)
	}
	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.KindInternal, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = fieldDelimiter
	if err := w.WriteAll(records); err != nil {
		return errors.Wrapf(err, errors.KindInternal, "writing %s", path)
	}
	return nil
}

// LoadRules reads "rules.csv" from dir.
func LoadRules(dir string) ([]model.Rule, error) {
	r, f, err := openReader(dir, "rules")
	if err != nil || r == nil {
		return nil, err
	}
	defer f.Close()

	var out []model.Rule
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing rules.csv")
	}
	for _, rec := range records {
		if len(rec) < 9 {
			return nil, errors.Errorf(errors.KindValidation, "malformed rules.csv row: %v", rec)
		}
		logLevel, err := strconv.Atoi(rec[7])
		if err != nil {
			return nil, errors.Wrapf(err, errors.KindValidation, "rules.csv log_level field: %v", rec)
		}
		out = append(out, model.Rule{
			Enabled: rec[0], Name: rec[1], Src: rec[2], SrcService: rec[3],
			Dst: rec[4], DstService: rec[5], Action: rec[6], LogLevel: logLevel, Description: rec[8],
		})
	}
	return out, nil
}

// SaveRules writes rules to "rules.csv" in dir.
func SaveRules(dir string, rules []model.Rule) error {
	records := make([][]string, 0, len(rules))
	for _, r := range rules {
		records = append(records, []string{
			r.Enabled, r.Name, r.Src, r.SrcService, r.Dst, r.DstService,
			r.Action, strconv.Itoa(r.LogLevel), r.Description,
		})
	}
	return writeRecords(dir, "rules", records)
}

// LoadHosts reads "hosts.csv" from dir.
func LoadHosts(dir string) ([]model.Host, error) {
	r, f, err := openReader(dir, "hosts")
	if err != nil || r == nil {
		return nil, err
	}
	defer f.Close()

	var out []model.Host
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing hosts.csv")
	}
	for _, rec := range records {
		if len(rec) < 4 {
			return nil, errors.Errorf(errors.KindValidation, "malformed hosts.csv row: %v", rec)
		}
		out = append(out, model.Host{Name: rec[0], Iface: rec[1], Address: rec[2], IsManagement: rec[3] == "1"})
	}
	return out, nil
}

// SaveHosts writes hosts to "hosts.csv" in dir.
func SaveHosts(dir string, hosts []model.Host) error {
	records := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		mgmt := "0"
		if h.IsManagement {
			mgmt = "1"
		}
		records = append(records, []string{h.Name, h.Iface, h.Address, mgmt})
	}
	return writeRecords(dir, "hosts", records)
}

// LoadHostGroups reads "hostgroups.csv" from dir; each row is the group
// name followed by its member tokens.
func LoadHostGroups(dir string) ([]model.HostGroup, error) {
	r, f, err := openReader(dir, "hostgroups")
	if err != nil || r == nil {
		return nil, err
	}
	defer f.Close()

	var out []model.HostGroup
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing hostgroups.csv")
	}
	for _, rec := range records {
		if len(rec) < 1 {
			continue
		}
		out = append(out, model.HostGroup{Name: rec[0], Children: rec[1:]})
	}
	return out, nil
}

// SaveHostGroups writes host groups to "hostgroups.csv" in dir.
func SaveHostGroups(dir string, groups []model.HostGroup) error {
	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, append([]string{g.Name}, g.Children...))
	}
	return writeRecords(dir, "hostgroups", records)
}

// LoadServices reads "services.csv" from dir.
func LoadServices(dir string) ([]model.Service, error) {
	r, f, err := openReader(dir, "services")
	if err != nil || r == nil {
		return nil, err
	}
	defer f.Close()

	var out []model.Service
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindValidation, "parsing services.csv")
	}
	for _, rec := range records {
		if len(rec) < 3 {
			return nil, errors.Errorf(errors.KindValidation, "malformed services.csv row: %v", rec)
		}
		out = append(out, model.Service{Name: rec[0], Protocol: rec[1], Ports: rec[2]})
	}
	return out, nil
}

// SaveServices writes services to "services.csv" in dir.
func SaveServices(dir string, services []model.Service) error {
	records := make([][]string, 0, len(services))
	for _, s := range services {
		records = append(records, []string{s.Name, s.Protocol, s.Ports})
	}
	return writeRecords(dir, "services", records)
}

// LoadNetworks reads "networks.csv" from dir, normalizing each row to its
// canonical network address (spec.md §3: "if not, the model is
// normalized on load and flagged") and reporting whether any row needed
// correction.
func LoadNetworks(dir string) ([]model.Network, bool, error) {
	r, f, err := openReader(dir, "networks")
	if err != nil || r == nil {
		return nil, false, err
	}
	defer f.Close()

	var out []model.Network
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.KindValidation, "parsing networks.csv")
	}
	normalized := false
	for _, rec := range records {
		if len(rec) < 3 {
			return nil, false, errors.Errorf(errors.KindValidation, "malformed networks.csv row: %v", rec)
		}
		prefixLen, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, false, errors.Wrapf(err, errors.KindValidation, "networks.csv prefix field: %v", rec)
		}
		n := model.Network{Name: rec[0], Address: rec[1], PrefixLen: prefixLen}
		changed, err := n.Normalize()
		if err != nil {
			return nil, false, errors.Attr(err, "network", n.Name)
		}
		if changed {
			logging.Default().WithComponent("tables").Warn("network address normalized on load", "network", n.Name, "prefix", n.PrefixLen)
			normalized = true
		}
		out = append(out, n)
	}
	return out, normalized, nil
}

// SaveNetworks writes networks to "networks.csv" in dir.
func SaveNetworks(dir string, networks []model.Network) error {
	records := make([][]string, 0, len(networks))
	for _, n := range networks {
		records = append(records, []string{n.Name, n.Address, strconv.Itoa(n.PrefixLen)})
	}
	return writeRecords(dir, "networks", records)
}

// LoadFireSet loads all five tables from dir into a FireSet.
func LoadFireSet(dir string) (*model.FireSet, error) {
	rules, err := LoadRules(dir)
	if err != nil {
		return nil, err
	}
	hosts, err := LoadHosts(dir)
	if err != nil {
		return nil, err
	}
	groups, err := LoadHostGroups(dir)
	if err != nil {
		return nil, err
	}
	services, err := LoadServices(dir)
	if err != nil {
		return nil, err
	}
	networks, normalized, err := LoadNetworks(dir)
	if err != nil {
		return nil, err
	}
	fs := model.New(rules, hosts, groups, services, networks)
	if normalized {
		fs.MarkDirty()
	}
	return fs, nil
}

// SaveFireSet writes all five tables from fs into dir and clears the
// dirty flag on success, the lock-file-free equivalent of
// DumbFireSet.save (this controller persists directly to the CSV files
// rather than via a separate lock-file dirty marker).
func SaveFireSet(dir string, fs *model.FireSet) error {
	if err := SaveRules(dir, fs.Rules); err != nil {
		return err
	}
	if err := SaveHosts(dir, fs.Hosts); err != nil {
		return err
	}
	if err := SaveHostGroups(dir, fs.HostGroups); err != nil {
		return err
	}
	if err := SaveServices(dir, fs.Services); err != nil {
		return err
	}
	if err := SaveNetworks(dir, fs.Networks); err != nil {
		return err
	}
	fs.MarkSaved()
	return nil
}

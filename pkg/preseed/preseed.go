/*
Copyright © 2025-2026 AnyLinQ B.V.
SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package preseed renders the debian-installer configuration document that
// answers every installation prompt.
package preseed

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/docker/go-units"

	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys"
	"github.com/AnyLinQ-B-V/debian12-isobuilder/pkg/sys/vfs"
)

// DocumentName is the file name the initrd loader expects at its root.
const DocumentName = "preseed.cfg"

//go:embed templates/preseed.cfg.tpl
var documentTpl string

// Document carries every parameter of the generated configuration. Two
// documents with identical fields render byte-identical output.
type Document struct {
	Username     string
	PasswordHash string
	Hardened     bool

	Hostname    string
	Domain      string
	Locale      string
	Keymap      string
	Timezone    string
	Mirror      string
	VolumeGroup string
	Packages    []string
}

// hardenedPackages are appended to the selection when hardening is on:
// host firewall and file integrity monitoring.
var hardenedPackages = []string{"ufw", "aide"}

// volume is one entry of the hardened partitioning recipe. Sizes are human
// readable and converted to the MB figures partman expects; max may also be
// a percentage of the disk.
type volume struct {
	label   string
	fsType  string
	min     string
	prio    int
	max     string
	mount   string
	options []string
	logical bool
	swap    bool
}

var hardenedVolumes = []volume{
	{label: "efi", fsType: "fat32", min: "512MiB", prio: 512, max: "1GiB", mount: "/boot/efi"},
	{label: "boot", fsType: "ext4", min: "768MiB", prio: 768, max: "768MiB", mount: "/boot"},
	{label: "root", fsType: "ext4", min: "4GiB", prio: 10000, max: "20%", mount: "/", logical: true},
	{label: "home", fsType: "ext4", min: "2GiB", prio: 8000, max: "30%", mount: "/home",
		options: []string{"nodev", "nosuid"}, logical: true},
	{label: "var", fsType: "ext4", min: "2GiB", prio: 7000, max: "25%", mount: "/var",
		options: []string{"nodev", "nosuid", "noexec"}, logical: true},
	{label: "tmp", fsType: "ext4", min: "1GiB", prio: 2000, max: "10%", mount: "/tmp",
		options: []string{"nodev", "nosuid", "noexec"}, logical: true},
	{label: "swap", fsType: "linux-swap", min: "1GiB", prio: 4000, max: "200%", logical: true, swap: true},
}

// New returns a document with the fixed site defaults applied.
func New(username, passwordHash string, hardened bool) *Document {
	d := &Document{
		Username:     username,
		PasswordHash: passwordHash,
		Hardened:     hardened,
		Hostname:     "debian12",
		Domain:       "local",
		Locale:       "en_US.UTF-8",
		Keymap:       "us",
		Timezone:     "UTC",
		Mirror:       "deb.debian.org",
		VolumeGroup:  "vg00",
		Packages:     []string{"openssh-server", "sudo", "curl", "vim"},
	}
	if hardened {
		d.Packages = append(d.Packages, hardenedPackages...)
	}
	return d
}

// Render produces the complete configuration document.
func (d *Document) Render() ([]byte, error) {
	recipe, err := expertRecipe(d.VolumeGroup)
	if err != nil {
		return nil, fmt.Errorf("building partitioning recipe: %w", err)
	}

	data := struct {
		*Document
		PackageList string
		Recipe      string
	}{
		Document:    d,
		PackageList: strings.Join(d.Packages, " "),
		Recipe:      recipe,
	}

	tpl, err := template.New(DocumentName).Parse(documentTpl)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}

	var buf bytes.Buffer
	err = tpl.Execute(&buf, &data)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders the document into dir. An already existing document is
// overwritten with just a warning, re-invocation is not an error.
func (d *Document) Write(s *sys.System, dir string) (string, error) {
	target := filepath.Join(dir, DocumentName)
	if ok, _ := vfs.Exists(s.FS(), target); ok {
		s.Logger().Warn("Overwriting existing configuration document '%s'", target)
	}

	data, err := d.Render()
	if err != nil {
		return "", err
	}

	err = s.FS().WriteFile(target, data, vfs.FilePerm)
	if err != nil {
		return "", fmt.Errorf("writing configuration document '%s': %w", target, err)
	}
	return target, nil
}

// expertRecipe assembles the partman-auto expert recipe for the hardened
// layout. The result is a single logical line using preseed continuations.
func expertRecipe(volumeGroup string) (string, error) {
	lines := []string{"hardened ::"}

	for _, v := range hardenedVolumes {
		minMB, err := sizeMB(v.min)
		if err != nil {
			return "", err
		}
		maxField := v.max
		if !strings.HasSuffix(maxField, "%") {
			maxMB, err := sizeMB(maxField)
			if err != nil {
				return "", err
			}
			maxField = fmt.Sprintf("%d", maxMB)
		}
		lines = append(lines, fmt.Sprintf("%d %d %s %s", minMB, v.prio, maxField, v.fsType))

		if v.logical {
			lines = append(lines, fmt.Sprintf("$lvmok{ } in_vg{ %s } lv_name{ %s }", volumeGroup, v.label))
		} else {
			lines = append(lines, "$primary{ } $iflabel{ gpt }")
		}

		switch {
		case v.swap:
			lines = append(lines, "method{ swap } format{ }")
		case v.mount == "/boot/efi":
			lines = append(lines, "method{ efi } format{ }")
		default:
			lines = append(lines,
				"method{ format } format{ }",
				fmt.Sprintf("use_filesystem{ } filesystem{ %s }", v.fsType))
		}

		if v.mount != "" && v.mount != "/boot/efi" {
			lines = append(lines, fmt.Sprintf("mountpoint{ %s }", v.mount))
		}
		for _, opt := range v.options {
			lines = append(lines, fmt.Sprintf("options/%s{ %s }", opt, opt))
		}
		lines = append(lines, ".")
	}

	return strings.Join(lines, " \\\n      "), nil
}

func sizeMB(human string) (int64, error) {
	size, err := units.RAMInBytes(human)
	if err != nil {
		return 0, fmt.Errorf("parsing size '%s': %w", human, err)
	}
	return size / units.MB, nil
}

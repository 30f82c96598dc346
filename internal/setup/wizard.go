// Package setup is the interactive first-run wizard. It walks the user
// through single- or multi-network configuration and writes config.json.
package setup

import (
	"errors"
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mcastro/wifiauth/internal/config"
)

// ErrCancelled is returned when the user aborts the wizard.
var ErrCancelled = errors.New("setup cancelled")

type wizard struct {
	app      *tview.Application
	pages    *tview.Pages
	networks *orderedmap.OrderedMap[string, config.Profile]

	result *config.Config
	err    error
}

// Run launches the wizard and writes the resulting configuration to
// configPath. Returns the saved config.
func Run(configPath string) (*config.Config, error) {
	w := &wizard{
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		networks: orderedmap.NewOrderedMap[string, config.Profile](),
		err:      ErrCancelled,
	}

	w.pages.AddPage("mode", w.modePage(), true, true)
	w.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			w.app.Stop()
			return nil
		}
		return ev
	})

	if err := w.app.SetRoot(w.pages, true).Run(); err != nil {
		return nil, fmt.Errorf("setup ui: %w", err)
	}
	if w.err != nil {
		return nil, w.err
	}
	if err := config.Save(configPath, w.result); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return w.result, nil
}

func (w *wizard) modePage() tview.Primitive {
	list := tview.NewList().
		AddItem("Single network", "One portal, one credential set (legacy format)", '1', func() {
			w.pages.AddAndSwitchToPage("single", w.singleForm(), true)
		}).
		AddItem("Multiple networks", "Per-SSID profiles with auto-detection (recommended)", '2', func() {
			w.pages.AddAndSwitchToPage("profile", w.profileForm(), true)
		})
	list.SetBorder(true).SetTitle(" WiFi Auto Auth Setup ")
	return center(list, 70, 10)
}

func (w *wizard) singleForm() tview.Primitive {
	form := tview.NewForm().
		AddInputField("Login URL", "", 50, nil, nil).
		AddInputField("Username", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil).
		AddInputField("Product type", "0", 10, nil, nil)
	form.AddButton("Save", func() {
		w.result = &config.Config{
			Legacy: &config.Profile{
				LoginURL:    fieldValue(form, "Login URL"),
				Username:    fieldValue(form, "Username"),
				Password:    fieldValue(form, "Password"),
				ProductType: nonEmpty(fieldValue(form, "Product type"), "0"),
				SSID:        "Unknown",
				Description: "Legacy configuration",
			},
			Dashboard: config.DefaultDashboard(),
		}
		w.err = nil
		w.app.Stop()
	})
	form.AddButton("Cancel", w.app.Stop)
	form.SetBorder(true).SetTitle(" Single Network ")
	return center(form, 70, 15)
}

func (w *wizard) profileForm() tview.Primitive {
	title := fmt.Sprintf(" Network Profile #%d ", w.networks.Len()+1)
	form := tview.NewForm().
		AddInputField("Profile name", "", 30, nil, nil).
		AddInputField("SSID", "", 30, nil, nil).
		AddInputField("Login URL", "", 50, nil, nil).
		AddInputField("Username", "", 30, nil, nil).
		AddPasswordField("Password", "", 30, '*', nil).
		AddInputField("Product type", "0", 10, nil, nil).
		AddInputField("Description", "", 50, nil, nil)

	save := func() bool {
		name := fieldValue(form, "Profile name")
		if name == "" {
			return false
		}
		w.networks.Set(name, config.Profile{
			SSID:        fieldValue(form, "SSID"),
			LoginURL:    fieldValue(form, "Login URL"),
			Username:    fieldValue(form, "Username"),
			Password:    fieldValue(form, "Password"),
			ProductType: nonEmpty(fieldValue(form, "Product type"), "0"),
			Description: fieldValue(form, "Description"),
		})
		return true
	}

	form.AddButton("Add another", func() {
		if save() {
			w.pages.AddAndSwitchToPage("profile", w.profileForm(), true)
		}
	})
	form.AddButton("Finish", func() {
		if !save() && w.networks.Len() == 0 {
			return
		}
		w.finish()
	})
	form.AddButton("Cancel", w.app.Stop)
	form.SetBorder(true).SetTitle(title)
	return center(form, 70, 21)
}

// finish asks for the default profile when there is a choice, then
// assembles the final config.
func (w *wizard) finish() {
	names := keys(w.networks)
	if len(names) == 1 {
		w.complete(names[0])
		return
	}

	list := tview.NewList()
	for _, name := range names {
		name := name
		p, _ := w.networks.Get(name)
		list.AddItem(name, p.SSID, 0, func() { w.complete(name) })
	}
	list.SetBorder(true).SetTitle(" Default Network ")
	w.pages.AddAndSwitchToPage("default", center(list, 70, 4+2*len(names)), true)
}

func (w *wizard) complete(defaultName string) {
	w.result = &config.Config{
		Default:   defaultName,
		Networks:  w.networks,
		Dashboard: config.DefaultDashboard(),
	}
	w.err = nil
	w.app.Stop()
}

func keys(m *orderedmap.OrderedMap[string, config.Profile]) []string {
	var out []string
	for name := range m.AllFromFront() {
		out = append(out, name)
	}
	return out
}

func fieldValue(form *tview.Form, label string) string {
	item := form.GetFormItemByLabel(label)
	if item == nil {
		return ""
	}
	field, ok := item.(*tview.InputField)
	if !ok {
		return ""
	}
	return field.GetText()
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

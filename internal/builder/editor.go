package builder

import (
	"fmt"
	"strconv"

	"scalper/internal/config"
	"scalper/internal/scraper"
)

// Edit правит загруженную конфигурацию в диалоге: URL ресурса, его селекторы, удаление.
// Возвращает true, если пользователь согласился сохранить изменения.
func (b *Builder) Edit(cfg *scraper.Configuration) (bool, error) {
	b.printf("Editing config %s\n", cfg.Name)

resources:
	for len(cfg.Resources) > 0 {
		urls := make([]string, len(cfg.Resources))
		for i, res := range cfg.Resources {
			urls[i] = res.URL
		}

		idx, err := b.choose("Select resource to edit:", urls)
		if err != nil {
			return false, err
		}

		action, err := b.choose("Select action:", []string{"Edit URL", "Edit selectors", "Delete", "Back", "Exit"})
		if err != nil {
			return false, err
		}

		switch action {
		case 0:
			res := &cfg.Resources[idx]
			url, err := b.optional(fmt.Sprintf("Site URL [%s]: ", res.URL), res.URL, config.ValidateURLTemplate)
			if err != nil {
				return false, err
			}
			res.URL = url
		case 1:
			if err := b.editSelectors(&cfg.Resources[idx]); err != nil {
				return false, err
			}
		case 2:
			if b.confirm("Are you sure you want to delete this resource?") {
				cfg.Resources = append(cfg.Resources[:idx], cfg.Resources[idx+1:]...)
			}
		case 3:
			continue
		case 4:
			break resources
		}

		if len(cfg.Resources) == 0 || !b.confirmDefault("Edit more resources?", true) {
			break
		}
	}

	if err := config.ValidateResources(cfg); err != nil {
		return false, err
	}

	return b.confirmDefault("Save changes?", true), nil
}

func (b *Builder) editSelectors(res *scraper.ResourceSpec) error {
	for {
		action, err := b.choose("Select action:", []string{"Add selector", "Edit selector", "Exit"})
		if err != nil {
			return err
		}

		switch action {
		case 0:
			spec, err := b.selector(res.Selectors)
			if err != nil {
				return err
			}
			res.Selectors = append(res.Selectors, spec)
		case 1:
			if len(res.Selectors) == 0 {
				b.printf("No selectors yet\n")
				break
			}
			if err := b.editSelector(res); err != nil {
				return err
			}
		case 2:
			return nil
		}

		if !b.confirmDefault("Edit more selectors?", true) {
			return nil
		}
	}
}

func (b *Builder) editSelector(res *scraper.ResourceSpec) error {
	labels := make([]string, len(res.Selectors))
	for i, s := range res.Selectors {
		labels[i] = fmt.Sprintf("%s (%s)", s.Name, s.Selector)
	}

	idx, err := b.choose("Choose selector to edit:", labels)
	if err != nil {
		return err
	}
	action, err := b.choose("Select action:", []string{"Rename", "Edit path", "Delete", "Back"})
	if err != nil {
		return err
	}

	spec := &res.Selectors[idx]
	switch action {
	case 0:
		name, err := b.optional(fmt.Sprintf("Name [%s]: ", spec.Name), spec.Name, func(s string) error {
			for i, other := range res.Selectors {
				if i != idx && other.Name == s {
					return fmt.Errorf("name %q is already used in this resource", s)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		spec.Name = name
	case 1:
		path, err := b.optional(fmt.Sprintf("Selector path [%s]: ", spec.Selector), spec.Selector, scraper.ValidateSelector)
		if err != nil {
			return err
		}
		spec.Selector = path
	case 2:
		if b.confirm("Are you sure you want to delete this selector?") {
			res.Selectors = append(res.Selectors[:idx], res.Selectors[idx+1:]...)
		}
	}
	return nil
}

// choose печатает нумерованный список и возвращает индекс выбранного пункта.
func (b *Builder) choose(title string, options []string) (int, error) {
	b.printf("%s\n", title)
	for i, option := range options {
		b.printf("  %d) %s\n", i+1, option)
	}

	answer, err := b.required(fmt.Sprintf("Choice [1-%d]: ", len(options)), func(s string) error {
		if n, err := strconv.Atoi(s); err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("enter a number from 1 to %d", len(options))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	n, _ := strconv.Atoi(answer)
	return n - 1, nil
}

// optional как required, но пустой ответ оставляет текущее значение.
func (b *Builder) optional(prompt, current string, validate func(string) error) (string, error) {
	for {
		answer, err := b.readLine(prompt)
		if answer == "" {
			return current, nil
		}
		if verr := validate(answer); verr != nil {
			b.printf("Invalid value: %v\n", verr)
			if err != nil {
				return "", ErrInputClosed
			}
			continue
		}
		return answer, nil
	}
}

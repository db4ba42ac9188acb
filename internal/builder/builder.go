package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"scalper/internal/config"
	"scalper/internal/scraper"
)

// ErrInputClosed означает, что ввод закончился раньше, чем заполнено обязательное поле.
var ErrInputClosed = errors.New("input closed before configuration was complete")

// Builder собирает Configuration в диалоге: ресурсы и их селекторы.
type Builder struct {
	reader *bufio.Reader
	out    io.Writer
	echo   bool
}

// New создаёт диалог. Если echo выключен (ввод не из терминала), подсказки не печатаются.
func New(in io.Reader, out io.Writer, echo bool) *Builder {
	return &Builder{
		reader: bufio.NewReader(in),
		out:    out,
		echo:   echo,
	}
}

func (b *Builder) Build(name string) (*scraper.Configuration, error) {
	b.printf("Creating new config %s\n", name)

	description, err := b.readLine("Config description (optional): ")
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg := &scraper.Configuration{
		Name:        name,
		Description: description,
	}

	for {
		res, err := b.resource()
		if err != nil {
			return nil, err
		}
		cfg.Resources = append(cfg.Resources, res)

		if !b.confirm("Add another resource?") {
			break
		}
	}

	if err := config.ValidateResources(cfg); err != nil {
		return nil, err
	}

	b.printf("Done! You can edit the config file later.\n")
	return cfg, nil
}

func (b *Builder) resource() (scraper.ResourceSpec, error) {
	url, err := b.required(
		fmt.Sprintf("Site URL (use %s for a parameter, e.g. https://example.com/%s): ", scraper.Placeholder, scraper.Placeholder),
		config.ValidateURLTemplate,
	)
	if err != nil {
		return scraper.ResourceSpec{}, err
	}

	res := scraper.ResourceSpec{URL: url}

	for {
		spec, err := b.selector(res.Selectors)
		if err != nil {
			return scraper.ResourceSpec{}, err
		}
		res.Selectors = append(res.Selectors, spec)

		if !b.confirm("Add another selector?") {
			return res, nil
		}
	}
}

// selector спрашивает путь и имя; имя уникально среди existing.
func (b *Builder) selector(existing []scraper.SelectorSpec) (scraper.SelectorSpec, error) {
	path, err := b.required("Selector path (e.g. body > div > h1): ", scraper.ValidateSelector)
	if err != nil {
		return scraper.SelectorSpec{}, err
	}

	name, err := b.required("Name (e.g. Title): ", func(s string) error {
		for _, other := range existing {
			if other.Name == s {
				return fmt.Errorf("name %q is already used in this resource", s)
			}
		}
		return nil
	})
	if err != nil {
		return scraper.SelectorSpec{}, err
	}

	return scraper.SelectorSpec{Name: name, Selector: path}, nil
}

// required переспрашивает, пока ответ пустой или не проходит проверку.
func (b *Builder) required(prompt string, validate func(string) error) (string, error) {
	for {
		answer, err := b.readLine(prompt)
		if answer == "" && err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrInputClosed
			}
			return "", err
		}
		if answer == "" {
			b.printf("This field is required\n")
			continue
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

// confirm задаёт вопрос да/нет, по умолчанию нет.
func (b *Builder) confirm(prompt string) bool {
	return b.confirmDefault(prompt, false)
}

func (b *Builder) confirmDefault(prompt string, def bool) bool {
	hint := " [y/N]: "
	if def {
		hint = " [Y/n]: "
	}

	answer, _ := b.readLine(prompt + hint)
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func (b *Builder) readLine(prompt string) (string, error) {
	b.printf("%s", prompt)
	line, err := b.reader.ReadString('\n')
	return strings.TrimSpace(line), err
}

func (b *Builder) printf(format string, args ...any) {
	if b.echo {
		_, _ = fmt.Fprintf(b.out, format, args...)
	}
}

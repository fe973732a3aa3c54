package service

import "github.com/iyhunko/storefront-backoffice/internal/model"

type seedCategory struct {
	name string
	slug string
}

type seedProduct struct {
	name          string
	slug          string
	description   string
	price         string
	discountPrice string
	category      string
	featured      bool
	stock         int
	images        []string
	specs         []model.Specification
}

const placeholderImage = "/placeholder.svg?height=400&width=400"

var demoCategories = []seedCategory{
	{name: "Anéis", slug: "aneis"},
	{name: "Brincos", slug: "brincos"},
	{name: "Colares", slug: "colares"},
	{name: "Pulseiras", slug: "pulseiras"},
	{name: "Relógios", slug: "relogios"},
}

var demoProducts = []seedProduct{
	{
		name:        "Anel Solitário Ouro Amarelo",
		slug:        "anel-solitario-ouro-amarelo",
		description: "Anel solitário em ouro amarelo 18k com diamante central de 20 pontos.",
		price:       "3990.00",
		category:    "aneis",
		featured:    true,
		stock:       15,
		images:      []string{placeholderImage, placeholderImage},
		specs: []model.Specification{
			{Name: "Material", Value: "Ouro Amarelo 18k"},
			{Name: "Pedra", Value: "Diamante"},
			{Name: "Quilate", Value: "20 pontos"},
		},
	},
	{
		name:          "Brinco Argola Ouro Rosé",
		slug:          "brinco-argola-ouro-rose",
		description:   "Brinco argola em ouro rosé 18k com acabamento polido.",
		price:         "2490.00",
		discountPrice: "1990.00",
		category:      "brincos",
		featured:      true,
		stock:         8,
		images:        []string{placeholderImage, placeholderImage},
		specs: []model.Specification{
			{Name: "Material", Value: "Ouro Rosé 18k"},
			{Name: "Diâmetro", Value: "2.5cm"},
		},
	},
	{
		name:        "Colar Pingente Coração Prata",
		slug:        "colar-pingente-coracao-prata",
		description: "Colar com pingente de coração em prata 925 com zircônias.",
		price:       "890.00",
		category:    "colares",
		featured:    true,
		stock:       20,
		images:      []string{placeholderImage, placeholderImage},
		specs: []model.Specification{
			{Name: "Material", Value: "Prata 925"},
			{Name: "Comprimento", Value: "45cm"},
			{Name: "Pedras", Value: "Zircônias"},
		},
	},
	{
		name:        "Pulseira Riviera Ouro Branco",
		slug:        "pulseira-riviera-ouro-branco",
		description: "Pulseira riviera em ouro branco 18k com diamantes.",
		price:       "7990.00",
		category:    "pulseiras",
		featured:    true,
		stock:       5,
		images:      []string{placeholderImage, placeholderImage},
		specs: []model.Specification{
			{Name: "Material", Value: "Ouro Branco 18k"},
			{Name: "Pedras", Value: "Diamantes"},
			{Name: "Comprimento", Value: "18cm"},
		},
	},
	{
		name:          "Relógio Feminino Dourado",
		slug:          "relogio-feminino-dourado",
		description:   "Relógio feminino com caixa em aço dourado e pulseira em couro.",
		price:         "1290.00",
		discountPrice: "990.00",
		category:      "relogios",
		featured:      true,
		stock:         12,
		images:        []string{placeholderImage, placeholderImage},
		specs: []model.Specification{
			{Name: "Material", Value: "Aço Dourado"},
			{Name: "Pulseira", Value: "Couro"},
			{Name: "Resistência", Value: "5 ATM"},
		},
	},
}

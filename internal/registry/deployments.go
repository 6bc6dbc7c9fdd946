package registry

// Contract names as they appear in the deployment artifacts.
const (
	ContractPerpetualProxy  = "PerpetualProxy"
	ContractPerpetualV1     = "PerpetualV1"
	ContractP1Orders        = "P1Orders"
	ContractP1FundingOracle = "P1FundingOracle"
	ContractP1Liquidation   = "P1Liquidation"
	ContractP1Deleveraging  = "P1Deleveraging"
	ContractTestToken       = "TestToken"
)

// Network ids with known deployments.
const (
	NetworkMainnet uint64 = 1
	NetworkKovan   uint64 = 42
	NetworkDev     uint64 = 1001
)

type contractSpec struct {
	Name string

	// AddressOf names another contract whose deployed address this
	// contract shares (implementation behind a proxy). Resolution order
	// at a shared address follows declaration order in contractSpecs.
	AddressOf string

	// Test marks contracts that exist only to support testing; their
	// transactions are excluded from gas accounting.
	Test bool

	// Deployments maps network id to the deployed address. A missing
	// network means the contract is not deployed there.
	Deployments map[uint64]string
}

// contractSpecs is the authoritative deployment table. Proxy entries
// precede the implementations that share their address.
var contractSpecs = []contractSpec{
	{
		Name: ContractPerpetualProxy,
		Deployments: map[uint64]string{
			NetworkMainnet: "0x07aBe965500A49370D331eCD613c7AC47dD6e547",
			NetworkKovan:   "0x0b38C902a1b5B391b6cDbb47d01EB231cBa977F9",
			NetworkDev:     "0x4b4EcA7C7dBCA2Cd8ED27E3a26B1A154cB9FD2a1",
		},
	},
	{
		Name:      ContractPerpetualV1,
		AddressOf: ContractPerpetualProxy,
	},
	{
		Name: ContractP1Orders,
		Deployments: map[uint64]string{
			NetworkMainnet: "0x3ea6F88eC8F7b24Bb3Ad206fa80124210e8E28F3",
			NetworkKovan:   "0xD9B94a4F3ca86B19Fb00D51Ec9Ff9B9C1bC3a1F5",
			NetworkDev:     "0x9c7E3DdAcBd04A1C4E52E8dBcC5Ac88b9E9b5dF0",
		},
	},
	{
		Name: ContractP1FundingOracle,
		Deployments: map[uint64]string{
			NetworkMainnet: "0x4525C9E3ae22c1Cc9bfdCD3A4C58e4bA5701D4dC",
			NetworkKovan:   "0x7F33803cBbF8B4d5b4b5e10bEd0f0d5a6cE91c6d",
			NetworkDev:     "0x1fD6B6D15C5C1b1a0Fcf06dF3E1dDfbf48aD8B2a",
		},
	},
	{
		Name: ContractP1Liquidation,
		Deployments: map[uint64]string{
			NetworkMainnet: "0x50328BBa2CF04A4d8346bC983A2CCC88c98F1135",
			NetworkKovan:   "0x2fF2a4b18e7F4a5cC4b9A0C8E0a1A7D1c8e48B11",
			NetworkDev:     "0xA4Bd41E6a1F69cD2E95f74cC2E6E4E57F8FcC5c3",
		},
	},
	{
		Name: ContractP1Deleveraging,
		Deployments: map[uint64]string{
			NetworkMainnet: "0x85Da7A4F2D6b2F1aF0C4a5A4D9bBd51dEdC9fAd1",
			NetworkKovan:   "0xBcB4C0dB6A3eAD1E4D8c02a2B3f4d8E9cB6Cb3c6",
			NetworkDev:     "0xD2C5E1F3eD7fdC4D0E2F8b6c7A9E0c1F3D5b7A90",
		},
	},
	{
		Name: ContractTestToken,
		Test: true,
		Deployments: map[uint64]string{
			NetworkKovan: "0x9d1c8cF1DdfE9ccBf1cEe47E5cCcaEb8a3E0F9c2",
			NetworkDev:   "0xE6cB1F9aDdcC6FcB3DdAa2c1fF3B79cDcF3b1A4e",
		},
	},
}

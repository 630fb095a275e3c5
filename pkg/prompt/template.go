package prompt

// FSMTemplate is the annotated example shown to the model. Its placeholder
// names (State1, EventA, actionA, variable1) are what the offline filter rejects.
const FSMTemplate = `{
    // Name of the smart contract.
    "contractName": "SimpleContract",
    // The list of contracts inherited by this contract
    "inherited contracts": ["ContractA", "ContractB"],
    // Name of the initial state.
    "initialState": "State1",
    /** states: An object containing all states(The number of states is determined by the code, do not rigidly follow this example), where each state contains a state name and a list of transitions.
        The state transition list (transitions) includes the following sections:
        trigger: The event or condition that triggers the state transition.
        target: The name of the target state.
        action: The action performed during the state transition process.
        condition[optional]: The condition for state transition.
    **/
    "states": [
      {
        "name": "State1",
        "transitions": [
          {
            "trigger": "EventA",
            "target": "State2",
            "action": "actionA",
            "condition": "conditionA"
          }
        ]
      },
      {
        "name": "State2",
        "transitions": [
          {
            "trigger": "EventB",
            "target": "State3",
            "action": "actionB",
            "condition": "conditionB"
          }
        ]
      },
      {
        "name": "State3",
        "transitions": [
          {
            "trigger": "EventC",
            "target": "State1",
            "action": "actionC"
          }
        ]
      }
    ],
    // variables: A list containing all variables, each variable containing the variable name, type, and initial value.
    "variables": [
      {
        "name": "variable1",
        "type": "uint",
        "initialValue": 0
      },
      {
        "name": "variable2",
        "type": "mapping(address => uint)",
        "initialValue": {}
      }
    ],
    // functions: Contains a list of all functions, each function contains the function name and function action.
    "functions": [
      {
        "name": "actionA",
        "function": "The function of actionA."
      },
      {
        "name": "actionB",
        "function": "The function of actionB."
      }
    ],
    // events: Contains a list of all events.
    "events": ["EventA", "EventB"]
}`
